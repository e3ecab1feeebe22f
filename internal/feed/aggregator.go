package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/garage"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/social"
	"go.uber.org/zap"
)

// Each source contributes at most this many items per fetch.
const sourceFetchLimit = 40

const locationTBA = "Location TBA"

var (
	errMissingGateway  = errors.New("gateway is required")
	errMissingProfiles = errors.New("profile service is required")
	errMissingViewer   = errors.New("viewer id is required")
	noOpLogger         = zap.NewNop()
)

// AggregatorConfig describes the dependencies of the feed aggregator.
type AggregatorConfig struct {
	Gateway  *gateway.Gateway
	Profiles *social.ProfileService
	Logger   *zap.Logger
}

// Aggregator merges builds and events into one ranked, state-annotated feed
// for a viewer. It is read-only; all mutation goes through the toggles.
type Aggregator struct {
	gw       *gateway.Gateway
	profiles *social.ProfileService
	logger   *zap.Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	if cfg.Gateway == nil {
		return nil, newServiceError(opAggregatorNew, "missing_gateway", errMissingGateway)
	}
	if cfg.Profiles == nil {
		return nil, newServiceError(opAggregatorNew, "missing_profiles", errMissingProfiles)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Aggregator{gw: cfg.Gateway, profiles: cfg.Profiles, logger: logger}, nil
}

// FetchUnifiedFeed produces the viewer's ranked feed. Ranking is a hard
// partition — items from followed authors before everything else — with
// recency ordering inside each partition. Any step's failure returns an empty
// feed and the error; there are no partial results.
func (a *Aggregator) FetchUnifiedFeed(ctx context.Context, viewerID string, filter Filter, contentFilter ContentFilter) ([]ContentItem, error) {
	if viewerID == "" {
		return nil, newServiceError(opFetchUnified, "missing_viewer", errMissingViewer)
	}
	if contentFilter == "" {
		contentFilter = ContentAll
	}

	followed, err := a.fetchFollowedIDs(ctx, viewerID)
	if err != nil {
		return nil, newServiceError(opFetchUnified, "follow_query_failed", err)
	}

	wantBuilds := contentFilter == ContentAll || contentFilter == ContentBuilds
	wantEvents := contentFilter == ContentAll || contentFilter == ContentEvents

	var (
		wg        sync.WaitGroup
		builds    []garage.Car
		meets     []events.Event
		buildsErr error
		eventsErr error
	)
	if wantBuilds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buildsErr = a.gw.From("cars").
				Eq("is_public", true).
				Order("created_at", true).
				Limit(sourceFetchLimit).
				Find(ctx, &builds)
		}()
	}
	if wantEvents {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eventsErr = a.gw.From("events").
				Order("created_at", true).
				Limit(sourceFetchLimit).
				Find(ctx, &meets)
		}()
	}
	wg.Wait()
	if buildsErr != nil {
		return nil, newServiceError(opFetchUnified, "build_query_failed", buildsErr)
	}
	if eventsErr != nil {
		return nil, newServiceError(opFetchUnified, "event_query_failed", eventsErr)
	}

	authors, err := a.fetchAuthors(ctx, builds, meets)
	if err != nil {
		return nil, newServiceError(opFetchUnified, "profile_query_failed", err)
	}

	items := make([]ContentItem, 0, len(builds)+len(meets))
	for _, build := range builds {
		items = append(items, projectBuild(build, authors))
	}
	for _, meet := range meets {
		items = append(items, projectEvent(meet, authors))
	}

	if filter == FilterFollowing {
		filtered := items[:0]
		for _, item := range items {
			if _, ok := followed[item.UserID]; ok {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	// Social priority first, recency inside each partition. The partition is
	// intentional product behavior, not a blended score.
	sort.SliceStable(items, func(i, j int) bool {
		_, iFollowed := followed[items[i].UserID]
		_, jFollowed := followed[items[j].UserID]
		if iFollowed != jFollowed {
			return iFollowed
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if err := a.annotate(ctx, viewerID, items, wantEvents); err != nil {
		return nil, err
	}

	a.logger.Debug("unified feed fetched",
		zap.String("viewer_id", viewerID),
		zap.String("filter", string(filter)),
		zap.Int("items", len(items)))
	return items, nil
}

// LikeCount returns the total likes on one content item without transferring
// the like rows.
func (a *Aggregator) LikeCount(ctx context.Context, contentID string, contentType social.ContentType) (int64, error) {
	count, err := a.gw.From("likes").
		Eq("content_id", contentID).
		Eq("content_type", contentType).
		Count(ctx)
	if err != nil {
		return 0, newServiceError(opLikeCount, "count_query_failed", err)
	}
	return count, nil
}

func (a *Aggregator) fetchFollowedIDs(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	var edges []social.Follow
	if err := a.gw.From("follows").Eq("follower_id", viewerID).Find(ctx, &edges); err != nil {
		return nil, err
	}
	followed := make(map[string]struct{}, len(edges))
	for _, edge := range edges {
		followed[edge.FollowingID] = struct{}{}
	}
	return followed, nil
}

// fetchAuthors batches the distinct author ids of both datasets into one
// profile query.
func (a *Aggregator) fetchAuthors(ctx context.Context, builds []garage.Car, meets []events.Event) (map[string]social.Profile, error) {
	seen := make(map[string]struct{}, len(builds)+len(meets))
	ids := make([]string, 0, len(builds)+len(meets))
	for _, build := range builds {
		if _, ok := seen[build.UserID]; !ok {
			seen[build.UserID] = struct{}{}
			ids = append(ids, build.UserID)
		}
	}
	for _, meet := range meets {
		if _, ok := seen[meet.UserID]; !ok {
			seen[meet.UserID] = struct{}{}
			ids = append(ids, meet.UserID)
		}
	}
	if len(ids) == 0 {
		return map[string]social.Profile{}, nil
	}
	return a.profiles.GetMany(ctx, ids)
}

func (a *Aggregator) annotate(ctx context.Context, viewerID string, items []ContentItem, includeEvents bool) error {
	var likes []social.Like
	if err := a.gw.From("likes").Eq("user_id", viewerID).Find(ctx, &likes); err != nil {
		return newServiceError(opFetchUnified, "like_query_failed", err)
	}
	var saves []social.Save
	if err := a.gw.From("saves").Eq("user_id", viewerID).Find(ctx, &saves); err != nil {
		return newServiceError(opFetchUnified, "save_query_failed", err)
	}

	type interactionKey struct {
		id          string
		contentType social.ContentType
	}
	liked := make(map[interactionKey]struct{}, len(likes))
	for _, like := range likes {
		liked[interactionKey{like.ContentID, like.ContentType}] = struct{}{}
	}
	saved := make(map[interactionKey]struct{}, len(saves))
	for _, save := range saves {
		saved[interactionKey{save.ContentID, save.ContentType}] = struct{}{}
	}

	joined := map[string]struct{}{}
	if includeEvents {
		var rsvps []events.RSVP
		if err := a.gw.From("event_attendees").Eq("user_id", viewerID).Find(ctx, &rsvps); err != nil {
			return newServiceError(opFetchUnified, "attendance_query_failed", err)
		}
		for _, rsvp := range rsvps {
			joined[rsvp.EventID] = struct{}{}
		}
	}

	for i := range items {
		key := interactionKey{items[i].ID, items[i].Type}
		_, items[i].IsLiked = liked[key]
		_, items[i].IsSaved = saved[key]
		if items[i].Type == social.ContentTypeEvent {
			_, items[i].IsJoined = joined[items[i].ID]
		}
	}
	return nil
}

func projectBuild(build garage.Car, authors map[string]social.Profile) ContentItem {
	item := ContentItem{
		ID:        build.ID,
		Type:      social.ContentTypeBuild,
		UserID:    build.UserID,
		CreatedAt: build.CreatedAt,
		Cover:     build.CoverURL,
		Title:     fmt.Sprintf("%s %s", build.Make, build.Model),
		Subtitle:  buildSubtitle(build),
	}
	if author, ok := authors[build.UserID]; ok {
		item.Author = &author
	}
	return item
}

func projectEvent(meet events.Event, authors map[string]social.Profile) ContentItem {
	subtitle := meet.Location
	if subtitle == "" {
		subtitle = locationTBA
	}
	item := ContentItem{
		ID:        meet.ID,
		Type:      social.ContentTypeEvent,
		UserID:    meet.UserID,
		CreatedAt: meet.CreatedAt,
		Cover:     meet.ImageURL,
		Title:     meet.Title,
		Subtitle:  subtitle,
	}
	if !meet.EventDate.IsZero() {
		date := meet.EventDate
		item.Date = &date
	}
	if author, ok := authors[meet.UserID]; ok {
		item.Author = &author
	}
	return item
}

func buildSubtitle(build garage.Car) string {
	subtitle := strconv.Itoa(build.Year)
	if build.Trim != "" {
		subtitle += " " + build.Trim
	}
	return subtitle
}
