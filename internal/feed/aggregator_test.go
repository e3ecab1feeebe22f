package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/garage"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/realtime"
	"github.com/midniteauto/backend/internal/social"
	"gorm.io/gorm"
)

func newTestAggregator(t *testing.T) (*Aggregator, *gateway.Gateway, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:midnite_feed_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&social.Profile{}, &social.Follow{}, &social.Like{}, &social.Save{},
		&garage.Car{}, &events.Event{}, &events.RSVP{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	gw, err := gateway.New(gateway.Config{Database: db, Hub: realtime.NewHub()})
	if err != nil {
		t.Fatalf("failed to build gateway: %v", err)
	}
	aggregator, err := NewAggregator(AggregatorConfig{
		Gateway:  gw,
		Profiles: social.NewProfileService(gw),
	})
	if err != nil {
		t.Fatalf("failed to build aggregator: %v", err)
	}
	return aggregator, gw, db
}

func seedProfile(t *testing.T, db *gorm.DB, id, username string) {
	t.Helper()
	profile := social.Profile{ID: id, Username: username, CreatedAt: time.Unix(1700000000, 0).UTC()}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile %s: %v", id, err)
	}
}

func seedFollow(t *testing.T, db *gorm.DB, follower, following string) {
	t.Helper()
	edge := social.Follow{
		ID: follower + "->" + following, FollowerID: follower, FollowingID: following,
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	if err := db.Create(&edge).Error; err != nil {
		t.Fatalf("failed to seed follow: %v", err)
	}
}

func seedBuild(t *testing.T, db *gorm.DB, id, userID string, createdAt time.Time, public bool) {
	t.Helper()
	car := garage.Car{
		ID: id, UserID: userID, Make: "Nissan", Model: "Silvia", Year: 1998, Trim: "Spec-R",
		IsPublic: public, CreatedAt: createdAt,
	}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("failed to seed build %s: %v", id, err)
	}
}

func seedEvent(t *testing.T, db *gorm.DB, id, userID, location string, createdAt time.Time) {
	t.Helper()
	event := events.Event{ID: id, UserID: userID, Title: "Midnight Meet", Location: location, CreatedAt: createdAt}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event %s: %v", id, err)
	}
}

func itemIDs(items []ContentItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestFeedPartitionsFollowedAuthorsFirst(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	base := time.Unix(1700000000, 0).UTC()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "followed", "followed")
	seedProfile(t, db, "stranger", "stranger")
	seedFollow(t, db, "viewer", "followed")

	// The stranger's content is newer; the followed author still ranks first.
	seedBuild(t, db, "build-followed", "followed", base, true)
	seedBuild(t, db, "build-stranger", "stranger", base.Add(time.Hour), true)
	seedEvent(t, db, "event-followed", "followed", "Docks", base.Add(-time.Hour))
	seedEvent(t, db, "event-stranger", "stranger", "Docks", base.Add(2*time.Hour))

	items, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterForYou, ContentAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"build-followed", "event-followed", "event-stranger", "build-stranger"}
	got := itemIDs(items)
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestFollowingFilterDropsStrangers(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	base := time.Unix(1700000000, 0).UTC()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "followed", "followed")
	seedProfile(t, db, "stranger", "stranger")
	seedFollow(t, db, "viewer", "followed")
	seedBuild(t, db, "build-followed", "followed", base, true)
	seedBuild(t, db, "build-stranger", "stranger", base.Add(time.Hour), true)

	items, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterFollowing, ContentAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "build-followed" {
		t.Fatalf("expected only followed content, got %v", itemIDs(items))
	}
}

func TestContentFilterSkipsUnwantedSource(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	base := time.Unix(1700000000, 0).UTC()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "author", "author")
	seedBuild(t, db, "build-1", "author", base, true)
	seedEvent(t, db, "event-1", "author", "Docks", base)

	builds, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterForYou, ContentBuilds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(builds) != 1 || builds[0].Type != social.ContentTypeBuild {
		t.Fatalf("expected builds only, got %v", itemIDs(builds))
	}

	meets, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterForYou, ContentEvents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meets) != 1 || meets[0].Type != social.ContentTypeEvent {
		t.Fatalf("expected events only, got %v", itemIDs(meets))
	}
}

func TestPrivateBuildsNeverSurface(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	base := time.Unix(1700000000, 0).UTC()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "author", "author")
	seedBuild(t, db, "build-private", "author", base, false)
	seedBuild(t, db, "build-public", "author", base, true)

	items, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterForYou, ContentAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "build-public" {
		t.Fatalf("expected only the public build, got %v", itemIDs(items))
	}
}

func TestAnnotationsReflectViewerInteractions(t *testing.T) {
	aggregator, gw, db := newTestAggregator(t)
	base := time.Unix(1700000000, 0).UTC()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "other", "other")
	seedProfile(t, db, "author", "author")
	seedBuild(t, db, "build-1", "author", base, true)
	seedEvent(t, db, "event-1", "author", "Docks", base)

	ctx := context.Background()
	like := social.Like{UserID: "viewer", ContentID: "build-1", ContentType: social.ContentTypeBuild}
	if err := gw.Insert(ctx, &like); err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}
	save := social.Save{UserID: "viewer", ContentID: "event-1", ContentType: social.ContentTypeEvent}
	if err := gw.Insert(ctx, &save); err != nil {
		t.Fatalf("failed to seed save: %v", err)
	}
	rsvp := events.RSVP{EventID: "event-1", UserID: "viewer"}
	if err := gw.Insert(ctx, &rsvp); err != nil {
		t.Fatalf("failed to seed rsvp: %v", err)
	}
	// Another user's like must not leak onto the viewer's annotations.
	otherLike := social.Like{UserID: "other", ContentID: "event-1", ContentType: social.ContentTypeEvent}
	if err := gw.Insert(ctx, &otherLike); err != nil {
		t.Fatalf("failed to seed other like: %v", err)
	}

	items, err := aggregator.FetchUnifiedFeed(ctx, "viewer", FilterForYou, ContentAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byID := make(map[string]ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	build := byID["build-1"]
	if !build.IsLiked || build.IsSaved || build.IsJoined {
		t.Fatalf("unexpected build annotations: %+v", build)
	}
	event := byID["event-1"]
	if event.IsLiked || !event.IsSaved || !event.IsJoined {
		t.Fatalf("unexpected event annotations: %+v", event)
	}
}

func TestProjectionTitlesAndLocationFallback(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	base := time.Unix(1700000000, 0).UTC()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "author", "author")
	seedBuild(t, db, "build-1", "author", base, true)
	seedEvent(t, db, "event-1", "author", "", base)

	items, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterForYou, ContentAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byID := make(map[string]ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	build := byID["build-1"]
	if build.Title != "Nissan Silvia" {
		t.Fatalf("unexpected build title %q", build.Title)
	}
	if build.Subtitle != "1998 Spec-R" {
		t.Fatalf("unexpected build subtitle %q", build.Subtitle)
	}
	if build.Author == nil || build.Author.Username != "author" {
		t.Fatalf("expected resolved author, got %+v", build.Author)
	}

	event := byID["event-1"]
	if event.Subtitle != locationTBA {
		t.Fatalf("expected location fallback, got %q", event.Subtitle)
	}
	if event.Date != nil {
		t.Fatalf("expected nil date for undated event, got %v", event.Date)
	}
}

func TestFetchUnifiedFeedEmptyDatabase(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	seedProfile(t, db, "viewer", "viewer")

	items, err := aggregator.FetchUnifiedFeed(context.Background(), "viewer", FilterForYou, ContentAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty feed, got %v", itemIDs(items))
	}
	// An empty feed must encode as a JSON array, not null.
	encoded, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if string(encoded) != "[]" {
		t.Fatalf("expected empty array, got %s", encoded)
	}
}

func TestFetchUnifiedFeedRequiresViewer(t *testing.T) {
	aggregator, _, _ := newTestAggregator(t)
	if _, err := aggregator.FetchUnifiedFeed(context.Background(), "", FilterForYou, ContentAll); err == nil {
		t.Fatalf("expected error for missing viewer")
	}
}

func TestToggleLikePairIsNoOp(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	ctx := context.Background()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "author", "author")
	seedBuild(t, db, "build-1", "author", time.Unix(1700000000, 0).UTC(), true)

	if err := aggregator.ToggleLike(ctx, "viewer", "build-1", social.ContentTypeBuild, false); err != nil {
		t.Fatalf("unexpected like error: %v", err)
	}
	count, err := aggregator.LikeCount(ctx, "build-1", social.ContentTypeBuild)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 like, got %d", count)
	}

	if err := aggregator.ToggleLike(ctx, "viewer", "build-1", social.ContentTypeBuild, true); err != nil {
		t.Fatalf("unexpected unlike error: %v", err)
	}
	count, err = aggregator.LikeCount(ctx, "build-1", social.ContentTypeBuild)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected toggle pair to be a no-op, got %d likes", count)
	}
}

func TestToggleLikeRemovingMissingRowSucceeds(t *testing.T) {
	aggregator, _, db := newTestAggregator(t)
	seedProfile(t, db, "viewer", "viewer")
	err := aggregator.ToggleLike(context.Background(), "viewer", "build-unknown", social.ContentTypeBuild, true)
	if err != nil {
		t.Fatalf("removing an absent like should succeed, got %v", err)
	}
}

func TestToggleJoinEventPairIsNoOp(t *testing.T) {
	aggregator, gw, db := newTestAggregator(t)
	ctx := context.Background()
	seedProfile(t, db, "viewer", "viewer")
	seedProfile(t, db, "author", "author")
	seedEvent(t, db, "event-1", "author", "Docks", time.Unix(1700000000, 0).UTC())

	if err := aggregator.ToggleJoinEvent(ctx, "viewer", "event-1", false); err != nil {
		t.Fatalf("unexpected join error: %v", err)
	}
	count, err := gw.From("event_attendees").Eq("event_id", "event-1").Count(ctx)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 attendee, got %d", count)
	}

	if err := aggregator.ToggleJoinEvent(ctx, "viewer", "event-1", true); err != nil {
		t.Fatalf("unexpected leave error: %v", err)
	}
	count, err = gw.From("event_attendees").Eq("event_id", "event-1").Count(ctx)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected toggle pair to be a no-op, got %d attendees", count)
	}
}
