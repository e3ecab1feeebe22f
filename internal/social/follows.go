package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
)

// ErrSelfFollow indicates an attempt to follow oneself.
var ErrSelfFollow = errors.New("social: cannot follow yourself")

// FollowService manages the directed follow graph.
type FollowService struct {
	gw *gateway.Gateway
}

// NewFollowService constructs a FollowService.
func NewFollowService(gw *gateway.Gateway) *FollowService {
	return &FollowService{gw: gw}
}

// Following returns every outgoing follow edge for the user.
func (s *FollowService) Following(ctx context.Context, userID string) ([]Follow, error) {
	var edges []Follow
	if err := s.gw.From("follows").Eq("follower_id", userID).Find(ctx, &edges); err != nil {
		return nil, fmt.Errorf("social: list following: %w", err)
	}
	return edges, nil
}

// FollowingIDs returns the set of author ids the user follows.
func (s *FollowService) FollowingIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	edges, err := s.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(edges))
	for _, edge := range edges {
		ids[edge.FollowingID] = struct{}{}
	}
	return ids, nil
}

// FollowerCount returns how many accounts follow the user, without
// transferring the edges themselves.
func (s *FollowService) FollowerCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.gw.From("follows").Eq("following_id", userID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("social: follower count: %w", err)
	}
	return count, nil
}

// Follow adds a directed edge. Self-follows are rejected.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) (Follow, error) {
	if followerID == followingID {
		return Follow{}, ErrSelfFollow
	}
	edge := Follow{FollowerID: followerID, FollowingID: followingID}
	if err := s.gw.Insert(ctx, &edge); err != nil {
		return Follow{}, fmt.Errorf("social: follow: %w", err)
	}
	return edge, nil
}

// Unfollow removes the edge if present. A missing edge is not an error.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	var edge Follow
	err := s.gw.From("follows").
		Eq("follower_id", followerID).
		Eq("following_id", followingID).
		Single(ctx, &edge)
	if errors.Is(err, gateway.ErrRowNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("social: unfollow: %w", err)
	}
	if err := s.gw.Delete(ctx, &Follow{}, edge.ID); err != nil {
		return fmt.Errorf("social: unfollow: %w", err)
	}
	return nil
}
