package social

import "time"

// ContentType distinguishes the two feed content sources.
type ContentType string

const (
	ContentTypeBuild ContentType = "build"
	ContentTypeEvent ContentType = "event"
)

// Profile is the public identity attached to every piece of content.
type Profile struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	Username  string    `gorm:"column:username;size:64;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;size:190"`
	AvatarURL string    `gorm:"column:avatar_url;size:512"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// RowID exposes the primary key for change notifications.
func (p Profile) RowID() string {
	return p.ID
}

// AssignServerFields stamps server-computed fields when unset.
func (p *Profile) AssignServerFields(id string, now time.Time) {
	if p.ID == "" {
		p.ID = id
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// Follow is a directed edge in the social graph.
type Follow struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	FollowerID  string    `gorm:"column:follower_id;size:190;not null;uniqueIndex:idx_follow_edge,priority:1"`
	FollowingID string    `gorm:"column:following_id;size:190;not null;uniqueIndex:idx_follow_edge,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Follow) TableName() string {
	return "follows"
}

// RowID exposes the primary key for change notifications.
func (f Follow) RowID() string {
	return f.ID
}

// Scope binds follow edges to the follower's list.
func (f Follow) Scope() (string, string) {
	return "follower_id", f.FollowerID
}

// AssignServerFields stamps server-computed fields when unset.
func (f *Follow) AssignServerFields(id string, now time.Time) {
	if f.ID == "" {
		f.ID = id
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
}

// Like is an existence row keyed by (user, content, type). Presence of the row
// is the like; there are no counters to keep consistent.
type Like struct {
	ID          string      `gorm:"column:id;primaryKey;size:190;not null"`
	UserID      string      `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_like_identity,priority:1"`
	ContentID   string      `gorm:"column:content_id;size:190;not null;uniqueIndex:idx_like_identity,priority:2"`
	ContentType ContentType `gorm:"column:content_type;size:16;not null;uniqueIndex:idx_like_identity,priority:3"`
	CreatedAt   time.Time   `gorm:"column:created_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Like) TableName() string {
	return "likes"
}

// RowID exposes the primary key for change notifications.
func (l Like) RowID() string {
	return l.ID
}

// Scope binds likes to the liking user's list.
func (l Like) Scope() (string, string) {
	return "user_id", l.UserID
}

// AssignServerFields stamps server-computed fields when unset.
func (l *Like) AssignServerFields(id string, now time.Time) {
	if l.ID == "" {
		l.ID = id
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
}

// Save is the bookmark counterpart of Like, over a separate table.
type Save struct {
	ID          string      `gorm:"column:id;primaryKey;size:190;not null"`
	UserID      string      `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_save_identity,priority:1"`
	ContentID   string      `gorm:"column:content_id;size:190;not null;uniqueIndex:idx_save_identity,priority:2"`
	ContentType ContentType `gorm:"column:content_type;size:16;not null;uniqueIndex:idx_save_identity,priority:3"`
	CreatedAt   time.Time   `gorm:"column:created_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Save) TableName() string {
	return "saves"
}

// RowID exposes the primary key for change notifications.
func (s Save) RowID() string {
	return s.ID
}

// Scope binds saves to the saving user's list.
func (s Save) Scope() (string, string) {
	return "user_id", s.UserID
}

// AssignServerFields stamps server-computed fields when unset.
func (s *Save) AssignServerFields(id string, now time.Time) {
	if s.ID == "" {
		s.ID = id
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
}
