package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/midniteauto/backend/internal/gateway"
	cache "github.com/patrickmn/go-cache"
)

const (
	profileCacheTTL   = 5 * time.Minute
	profileCacheSweep = 10 * time.Minute
)

// ErrProfileNotFound indicates the requested profile does not exist.
var ErrProfileNotFound = errors.New("social: profile not found")

// ProfileService reads and writes public profiles. Batch lookups back the feed
// aggregator, so resolved profiles are cached briefly to keep repeated feed
// fetches from re-querying the same authors.
type ProfileService struct {
	gw    *gateway.Gateway
	cache *cache.Cache
}

// NewProfileService constructs a ProfileService.
func NewProfileService(gw *gateway.Gateway) *ProfileService {
	return &ProfileService{
		gw:    gw,
		cache: cache.New(profileCacheTTL, profileCacheSweep),
	}
}

// Get fetches exactly one profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (Profile, error) {
	if cached, ok := s.cache.Get(id); ok {
		if profile, ok := cached.(Profile); ok {
			return profile, nil
		}
	}

	var profile Profile
	err := s.gw.From("profiles").Eq("id", id).Single(ctx, &profile)
	if errors.Is(err, gateway.ErrRowNotFound) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("social: get profile: %w", err)
	}
	s.cache.SetDefault(id, profile)
	return profile, nil
}

// GetMany batch-fetches profiles for the distinct ids in one query, keyed by
// id in the result. Missing ids are simply absent from the map.
func (s *ProfileService) GetMany(ctx context.Context, ids []string) (map[string]Profile, error) {
	resolved := make(map[string]Profile, len(ids))
	missing := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if cached, ok := s.cache.Get(id); ok {
			if profile, ok := cached.(Profile); ok {
				resolved[id] = profile
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		var profiles []Profile
		if err := s.gw.From("profiles").In("id", missing).Find(ctx, &profiles); err != nil {
			return nil, fmt.Errorf("social: batch get profiles: %w", err)
		}
		for _, profile := range profiles {
			resolved[profile.ID] = profile
			s.cache.SetDefault(profile.ID, profile)
		}
	}

	return resolved, nil
}

// Add creates a profile.
func (s *ProfileService) Add(ctx context.Context, profile *Profile) error {
	if profile.Username == "" {
		return fmt.Errorf("social: add profile: username is required")
	}
	if err := s.gw.Insert(ctx, profile); err != nil {
		return fmt.Errorf("social: add profile: %w", err)
	}
	s.cache.SetDefault(profile.ID, *profile)
	return nil
}

// Update patches a profile and invalidates its cache entry.
func (s *ProfileService) Update(ctx context.Context, id string, fields map[string]any) (Profile, error) {
	var profile Profile
	if err := s.gw.Update(ctx, &profile, id, fields); err != nil {
		return Profile{}, fmt.Errorf("social: update profile: %w", err)
	}
	s.cache.SetDefault(id, profile)
	return profile, nil
}
