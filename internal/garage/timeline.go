package garage

import (
	"context"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
)

// TimelineService manages a build's milestone history.
type TimelineService struct {
	gw *gateway.Gateway
}

func NewTimelineService(gw *gateway.Gateway) *TimelineService {
	return &TimelineService{gw: gw}
}

// List returns a car's timeline entries, newest first.
func (s *TimelineService) List(ctx context.Context, carID string) ([]TimelineEntry, error) {
	var entries []TimelineEntry
	err := s.gw.From("car_timeline").Eq("car_id", carID).Order("created_at", true).Find(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("garage: list timeline: %w", err)
	}
	return entries, nil
}

func (s *TimelineService) Add(ctx context.Context, entry *TimelineEntry) error {
	if entry.CarID == "" || entry.Title == "" {
		return fmt.Errorf("garage: add timeline entry: car_id and title are required")
	}
	if err := s.gw.Insert(ctx, entry); err != nil {
		return fmt.Errorf("garage: add timeline entry: %w", err)
	}
	return nil
}

func (s *TimelineService) Update(ctx context.Context, id string, fields map[string]any) (TimelineEntry, error) {
	var entry TimelineEntry
	if err := s.gw.Update(ctx, &entry, id, fields); err != nil {
		return TimelineEntry{}, fmt.Errorf("garage: update timeline entry: %w", err)
	}
	return entry, nil
}

func (s *TimelineService) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &TimelineEntry{}, id); err != nil {
		return fmt.Errorf("garage: delete timeline entry: %w", err)
	}
	return nil
}
