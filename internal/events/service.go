package events

import (
	"context"
	"fmt"
	"time"

	"github.com/midniteauto/backend/internal/gateway"
)

// Service manages calendar events and attendance.
type Service struct {
	gw *gateway.Gateway
}

// NewService constructs an event service.
func NewService(gw *gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Recent returns the most recently created events, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	var list []Event
	err := s.gw.From("events").Order("created_at", true).Limit(limit).Find(ctx, &list)
	if err != nil {
		return nil, fmt.Errorf("events: list recent: %w", err)
	}
	return list, nil
}

// Upcoming returns events dated from now on, soonest first.
func (s *Service) Upcoming(ctx context.Context, now time.Time, limit int) ([]Event, error) {
	var list []Event
	err := s.gw.From("events").
		Gte("event_date", now).
		Order("event_date", false).
		Limit(limit).
		Find(ctx, &list)
	if err != nil {
		return nil, fmt.Errorf("events: list upcoming: %w", err)
	}
	return list, nil
}

// Get fetches one event by id.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	var event Event
	if err := s.gw.From("events").Eq("id", id).Single(ctx, &event); err != nil {
		return Event{}, fmt.Errorf("events: get event: %w", err)
	}
	return event, nil
}

// Add creates an event.
func (s *Service) Add(ctx context.Context, event *Event) error {
	if event.UserID == "" || event.Title == "" {
		return fmt.Errorf("events: add event: user_id and title are required")
	}
	if err := s.gw.Insert(ctx, event); err != nil {
		return fmt.Errorf("events: add event: %w", err)
	}
	return nil
}

// Update patches an event.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (Event, error) {
	var event Event
	if err := s.gw.Update(ctx, &event, id, fields); err != nil {
		return Event{}, fmt.Errorf("events: update event: %w", err)
	}
	return event, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Event{}, id); err != nil {
		return fmt.Errorf("events: delete event: %w", err)
	}
	return nil
}

// AttendeeCount returns how many users joined the event. The count query
// transfers no attendee rows.
func (s *Service) AttendeeCount(ctx context.Context, eventID string) (int64, error) {
	count, err := s.gw.From("event_attendees").Eq("event_id", eventID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("events: attendee count: %w", err)
	}
	return count, nil
}

// AttendedBy returns the set of event ids the user has joined.
func (s *Service) AttendedBy(ctx context.Context, userID string) (map[string]struct{}, error) {
	var rsvps []RSVP
	if err := s.gw.From("event_attendees").Eq("user_id", userID).Find(ctx, &rsvps); err != nil {
		return nil, fmt.Errorf("events: list attendance: %w", err)
	}
	joined := make(map[string]struct{}, len(rsvps))
	for _, rsvp := range rsvps {
		joined[rsvp.EventID] = struct{}{}
	}
	return joined, nil
}
