package events

import "time"

// Event is a meet, track day, or show. Location may be empty until announced.
type Event struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	UserID    string    `gorm:"column:user_id;size:190;not null;index"`
	Title     string    `gorm:"column:title;size:190;not null"`
	Location  string    `gorm:"column:location;size:190"`
	ImageURL  string    `gorm:"column:image_url;size:512"`
	EventDate time.Time `gorm:"column:event_date"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (Event) TableName() string { return "events" }

func (e Event) RowID() string { return e.ID }

// Scope binds events to their organizer's list.
func (e Event) Scope() (string, string) { return "user_id", e.UserID }

func (e *Event) AssignServerFields(id string, now time.Time) {
	if e.ID == "" {
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}

// RSVP is an existence row: its presence means the user is attending.
type RSVP struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	EventID   string    `gorm:"column:event_id;size:190;not null;uniqueIndex:idx_rsvp_identity,priority:1"`
	UserID    string    `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_rsvp_identity,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (RSVP) TableName() string { return "event_attendees" }

func (r RSVP) RowID() string { return r.ID }

func (r RSVP) Scope() (string, string) { return "event_id", r.EventID }

func (r *RSVP) AssignServerFields(id string, now time.Time) {
	if r.ID == "" {
		r.ID = id
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}
