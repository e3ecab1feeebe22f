package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/midniteauto/backend/internal/feed"
	"github.com/midniteauto/backend/internal/social"
	"go.uber.org/zap"
)

func parseFeedFilter(value string) feed.Filter {
	if value == string(feed.FilterFollowing) {
		return feed.FilterFollowing
	}
	return feed.FilterForYou
}

func parseContentFilter(value string) feed.ContentFilter {
	switch feed.ContentFilter(value) {
	case feed.ContentBuilds:
		return feed.ContentBuilds
	case feed.ContentEvents:
		return feed.ContentEvents
	default:
		return feed.ContentAll
	}
}

func parseContentType(value string) (social.ContentType, bool) {
	switch social.ContentType(value) {
	case social.ContentTypeBuild:
		return social.ContentTypeBuild, true
	case social.ContentTypeEvent:
		return social.ContentTypeEvent, true
	default:
		return "", false
	}
}

func (h *httpHandler) handleFeed(c *gin.Context) {
	viewer := h.viewerID(c)
	filter := parseFeedFilter(c.Query("filter"))
	contentFilter := parseContentFilter(c.Query("content"))

	items, err := h.deps.Feed.FetchUnifiedFeed(c.Request.Context(), viewer, filter, contentFilter)
	if err != nil {
		h.logger.Error("feed fetch failed", zap.String("viewer_id", viewer), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *httpHandler) handleLikeCount(c *gin.Context) {
	contentID := c.Query("content_id")
	contentType, ok := parseContentType(c.Query("content_type"))
	if contentID == "" || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	count, err := h.deps.Feed.LikeCount(c.Request.Context(), contentID, contentType)
	if err != nil {
		h.logger.Error("like count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type togglePayload struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	Current     bool   `json:"current"`
}

// Toggle endpoints are fire-and-forget: the client has already flipped its UI
// state, so failures are logged and acknowledged rather than surfaced. The
// next feed fetch restores server truth.
func (h *httpHandler) handleToggleLike(c *gin.Context) {
	var request togglePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	contentType, ok := parseContentType(request.ContentType)
	if request.ContentID == "" || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	err := h.deps.Feed.ToggleLike(c.Request.Context(), h.viewerID(c), request.ContentID, contentType, request.Current)
	if err != nil {
		h.logger.Warn("like toggle failed", zap.String("content_id", request.ContentID), zap.Error(err))
	}
	c.Status(http.StatusAccepted)
}

func (h *httpHandler) handleToggleSave(c *gin.Context) {
	var request togglePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	contentType, ok := parseContentType(request.ContentType)
	if request.ContentID == "" || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	err := h.deps.Feed.ToggleSave(c.Request.Context(), h.viewerID(c), request.ContentID, contentType, request.Current)
	if err != nil {
		h.logger.Warn("save toggle failed", zap.String("content_id", request.ContentID), zap.Error(err))
	}
	c.Status(http.StatusAccepted)
}

type joinPayload struct {
	Current bool `json:"current"`
}

func (h *httpHandler) handleToggleJoin(c *gin.Context) {
	eventID := c.Param("id")
	var request joinPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	err := h.deps.Feed.ToggleJoinEvent(c.Request.Context(), h.viewerID(c), eventID, request.Current)
	if err != nil {
		h.logger.Warn("join toggle failed", zap.String("event_id", eventID), zap.Error(err))
	}
	c.Status(http.StatusAccepted)
}
