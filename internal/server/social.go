package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/midniteauto/backend/internal/social"
	"go.uber.org/zap"
)

func (h *httpHandler) handleGetProfile(c *gin.Context) {
	profile, err := h.deps.Profiles.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, social.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("profile fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_failed"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type profilePayload struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *httpHandler) handleCreateProfile(c *gin.Context) {
	var request profilePayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	profile := social.Profile{
		Username:  request.Username,
		FullName:  request.FullName,
		AvatarURL: request.AvatarURL,
	}
	if err := h.deps.Profiles.Add(c.Request.Context(), &profile); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *httpHandler) handleUpdateProfile(c *gin.Context) {
	if c.Param("id") != h.viewerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	fields, ok := bindPatch(c, "username", "full_name", "avatar_url")
	if !ok {
		return
	}
	profile, err := h.deps.Profiles.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *httpHandler) handleFollowerCount(c *gin.Context) {
	count, err := h.deps.Follows.FollowerCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("follower count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *httpHandler) handleListFollowing(c *gin.Context) {
	edges, err := h.deps.Follows.Following(c.Request.Context(), h.viewerID(c))
	if err != nil {
		h.logger.Error("following list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follows_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"follows": edges})
}

type followPayload struct {
	FollowingID string `json:"following_id"`
}

func (h *httpHandler) handleFollow(c *gin.Context) {
	var request followPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.FollowingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	edge, err := h.deps.Follows.Follow(c.Request.Context(), h.viewerID(c), request.FollowingID)
	if errors.Is(err, social.ErrSelfFollow) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "self_follow"})
		return
	}
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

func (h *httpHandler) handleUnfollow(c *gin.Context) {
	err := h.deps.Follows.Unfollow(c.Request.Context(), h.viewerID(c), c.Param("following_id"))
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
