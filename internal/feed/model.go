package feed

import (
	"time"

	"github.com/midniteauto/backend/internal/social"
)

// Filter selects the social graph applied to the feed.
type Filter string

const (
	// FilterForYou applies no graph filtering.
	FilterForYou Filter = "For You"
	// FilterFollowing restricts the feed to followed authors.
	FilterFollowing Filter = "Following"
)

// ContentFilter selects which source datasets are fetched. It is purely a
// fetch-cost optimization; it never changes ranking.
type ContentFilter string

const (
	ContentAll    ContentFilter = "all"
	ContentBuilds ContentFilter = "builds"
	ContentEvents ContentFilter = "events"
)

// ContentItem is the normalized projection of a build or event produced by
// the aggregator. It exists only in aggregator output and is never persisted.
type ContentItem struct {
	ID        string             `json:"id"`
	Type      social.ContentType `json:"type"`
	UserID    string             `json:"user_id"`
	CreatedAt time.Time          `json:"created_at"`
	Cover     string             `json:"cover,omitempty"`
	Title     string             `json:"title"`
	Subtitle  string             `json:"subtitle"`
	Date      *time.Time         `json:"date,omitempty"`
	Author    *social.Profile    `json:"author,omitempty"`
	IsLiked   bool               `json:"is_liked"`
	IsSaved   bool               `json:"is_saved"`
	IsJoined  bool               `json:"is_joined,omitempty"`
}
