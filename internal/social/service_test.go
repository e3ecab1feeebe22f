package social

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/realtime"
	"gorm.io/gorm"
)

func newTestGateway(t *testing.T) (*gateway.Gateway, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:midnite_social_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	if err := db.AutoMigrate(&Profile{}, &Follow{}, &Like{}, &Save{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	gw, err := gateway.New(gateway.Config{Database: db, Hub: realtime.NewHub()})
	if err != nil {
		t.Fatalf("failed to build gateway: %v", err)
	}
	return gw, db
}

func TestProfileGetMissingReturnsNotFound(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewProfileService(gw)
	if _, err := service.Get(context.Background(), "ghost"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileGetServesFromCache(t *testing.T) {
	gw, db := newTestGateway(t)
	service := NewProfileService(gw)
	ctx := context.Background()

	profile := Profile{Username: "midnight_s14"}
	if err := service.Add(ctx, &profile); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	// Mutate the row behind the service's back; the cached copy should win
	// until the entry expires or is refreshed by an update.
	if err := db.Model(&Profile{}).Where("id = ?", profile.ID).Update("username", "changed").Error; err != nil {
		t.Fatalf("failed to mutate row: %v", err)
	}

	cached, err := service.Get(ctx, profile.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if cached.Username != "midnight_s14" {
		t.Fatalf("expected cached username, got %q", cached.Username)
	}
}

func TestProfileUpdateRefreshesCache(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewProfileService(gw)
	ctx := context.Background()

	profile := Profile{Username: "midnight_s14"}
	if err := service.Add(ctx, &profile); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if _, err := service.Update(ctx, profile.ID, map[string]any{"username": "daikoku_r34"}); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}

	fetched, err := service.Get(ctx, profile.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if fetched.Username != "daikoku_r34" {
		t.Fatalf("expected refreshed username, got %q", fetched.Username)
	}
}

func TestGetManyResolvesDistinctIDs(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewProfileService(gw)
	ctx := context.Background()

	first := Profile{Username: "first"}
	second := Profile{Username: "second"}
	if err := service.Add(ctx, &first); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.Add(ctx, &second); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	resolved, err := service.GetMany(ctx, []string{first.ID, second.ID, first.ID, "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(resolved))
	}
	if resolved[first.ID].Username != "first" || resolved[second.ID].Username != "second" {
		t.Fatalf("unexpected resolution %+v", resolved)
	}
	if _, ok := resolved["ghost"]; ok {
		t.Fatalf("missing id should be absent from the result")
	}
}

func TestFollowRejectsSelfFollow(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewFollowService(gw)
	if _, err := service.Follow(context.Background(), "user-1", "user-1"); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewFollowService(gw)
	ctx := context.Background()

	if _, err := service.Follow(ctx, "user-1", "user-2"); err != nil {
		t.Fatalf("unexpected follow error: %v", err)
	}
	ids, err := service.FollowingIDs(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ids["user-2"]; !ok {
		t.Fatalf("expected user-2 in following set, got %v", ids)
	}

	count, err := service.FollowerCount(ctx, "user-2")
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 follower, got %d", count)
	}

	if err := service.Unfollow(ctx, "user-1", "user-2"); err != nil {
		t.Fatalf("unexpected unfollow error: %v", err)
	}
	ids, err = service.FollowingIDs(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty following set, got %v", ids)
	}
}

func TestUnfollowMissingEdgeSucceeds(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewFollowService(gw)
	if err := service.Unfollow(context.Background(), "user-1", "user-2"); err != nil {
		t.Fatalf("unfollowing a missing edge should succeed, got %v", err)
	}
}
