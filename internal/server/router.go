package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/midniteauto/backend/internal/auth"
	"github.com/midniteauto/backend/internal/chat"
	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/feed"
	"github.com/midniteauto/backend/internal/garage"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/market"
	"github.com/midniteauto/backend/internal/social"
	"go.uber.org/zap"
)

const userIDContextKey = "midnite_user_id"

var (
	errMissingTokenManager = errors.New("token manager dependency required")
	errMissingGateway      = errors.New("gateway dependency required")
	errMissingFeed         = errors.New("feed aggregator dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// SessionTokenManager issues and validates API session tokens.
type SessionTokenManager interface {
	IssueSessionToken(ctx context.Context, userID string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP surface to the domain services.
type Dependencies struct {
	TokenManager SessionTokenManager
	Gateway      *gateway.Gateway
	Profiles     *social.ProfileService
	Follows      *social.FollowService
	Cars         *garage.CarService
	Parts        *garage.PartService
	Maintenance  *garage.MaintenanceService
	Tasks        *garage.TaskService
	Photos       *garage.PhotoService
	Timeline     *garage.TimelineService
	Events       *events.Service
	Chats        *chat.Service
	Listings     *market.Service
	Feed         *feed.Aggregator
	// Sessions, when set, tracks the most recently issued session so auth
	// state listeners observe sign-ins.
	Sessions *auth.SessionManager
	// StorageDir, when set, serves uploaded objects from local disk under
	// /storage. Leave empty for the s3 driver.
	StorageDir string
	Logger     *zap.Logger
}

// NewHTTPHandler builds the gin router for the API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Gateway == nil {
		return nil, errMissingGateway
	}
	if deps.Feed == nil {
		return nil, errMissingFeed
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{deps: deps, logger: logger}

	router.POST("/auth/session", handler.handleIssueSession)
	if deps.StorageDir != "" {
		router.Static("/storage", deps.StorageDir)
	}

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)

	protected.GET("/feed", handler.handleFeed)
	protected.GET("/feed/likes/count", handler.handleLikeCount)
	protected.POST("/feed/likes/toggle", handler.handleToggleLike)
	protected.POST("/feed/saves/toggle", handler.handleToggleSave)

	protected.GET("/profiles/:id", handler.handleGetProfile)
	protected.GET("/profiles/:id/followers/count", handler.handleFollowerCount)
	protected.POST("/profiles", handler.handleCreateProfile)
	protected.PATCH("/profiles/:id", handler.handleUpdateProfile)

	protected.GET("/follows", handler.handleListFollowing)
	protected.POST("/follows", handler.handleFollow)
	protected.DELETE("/follows/:following_id", handler.handleUnfollow)

	protected.GET("/garage", handler.handleListCars)
	protected.POST("/garage", handler.handleCreateCar)
	protected.GET("/garage/:id", handler.handleGetCar)
	protected.PATCH("/garage/:id", handler.handleUpdateCar)
	protected.DELETE("/garage/:id", handler.handleDeleteCar)
	protected.GET("/discover/builds", handler.handlePublicBuilds)

	protected.GET("/garage/:id/parts", handler.handleListParts)
	protected.POST("/garage/:id/parts", handler.handleAddPart)
	protected.PATCH("/parts/:id", handler.handleUpdatePart)
	protected.DELETE("/parts/:id", handler.handleDeletePart)

	protected.GET("/garage/:id/maintenance", handler.handleListMaintenance)
	protected.POST("/garage/:id/maintenance", handler.handleAddMaintenance)
	protected.PATCH("/maintenance/:id", handler.handleUpdateMaintenance)
	protected.DELETE("/maintenance/:id", handler.handleDeleteMaintenance)

	protected.GET("/garage/:id/tasks", handler.handleListTasks)
	protected.GET("/garage/:id/tasks/open-count", handler.handleOpenTaskCount)
	protected.POST("/garage/:id/tasks", handler.handleAddTask)
	protected.PATCH("/tasks/:id", handler.handleUpdateTask)
	protected.DELETE("/tasks/:id", handler.handleDeleteTask)

	protected.GET("/garage/:id/photos", handler.handleListPhotos)
	protected.POST("/garage/:id/photos", handler.handleAddPhoto)
	protected.DELETE("/photos/:id", handler.handleDeletePhoto)

	protected.GET("/garage/:id/timeline", handler.handleListTimeline)
	protected.POST("/garage/:id/timeline", handler.handleAddTimelineEntry)
	protected.PATCH("/timeline/:id", handler.handleUpdateTimelineEntry)
	protected.DELETE("/timeline/:id", handler.handleDeleteTimelineEntry)

	protected.GET("/events", handler.handleListEvents)
	protected.POST("/events", handler.handleCreateEvent)
	protected.GET("/events/:id", handler.handleGetEvent)
	protected.PATCH("/events/:id", handler.handleUpdateEvent)
	protected.DELETE("/events/:id", handler.handleDeleteEvent)
	protected.GET("/events/:id/attendees/count", handler.handleAttendeeCount)
	protected.POST("/events/:id/join", handler.handleToggleJoin)

	protected.GET("/chats", handler.handleListChats)
	protected.POST("/chats", handler.handleOpenChat)
	protected.GET("/chats/:id/messages", handler.handleListMessages)
	protected.POST("/chats/:id/messages", handler.handleSendMessage)
	protected.DELETE("/messages/:id", handler.handleDeleteMessage)

	protected.GET("/listings", handler.handleListListings)
	protected.POST("/listings", handler.handleCreateListing)
	protected.PATCH("/listings/:id", handler.handleUpdateListing)
	protected.DELETE("/listings/:id", handler.handleDeleteListing)

	protected.GET("/realtime", handler.handleRealtime)

	return router, nil
}

type httpHandler struct {
	deps   Dependencies
	logger *zap.Logger
}

type sessionRequestPayload struct {
	UserID string `json:"user_id"`
}

type sessionResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleIssueSession(c *gin.Context) {
	var request sessionRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if h.deps.Profiles != nil {
		if _, err := h.deps.Profiles.Get(c.Request.Context(), request.UserID); err != nil {
			if errors.Is(err, social.ErrProfileNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown_profile"})
				return
			}
			h.logger.Error("profile lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_lookup_failed"})
			return
		}
	}

	token, expiresIn, err := h.deps.TokenManager.IssueSessionToken(c.Request.Context(), request.UserID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	if h.deps.Sessions != nil {
		h.deps.Sessions.SetSession(auth.Session{
			UserID:      request.UserID,
			AccessToken: token,
			ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second),
		})
	}

	c.JSON(http.StatusOK, sessionResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

// authorizeRequest accepts a bearer header, or an access_token query parameter
// for clients that cannot set headers on websocket upgrades.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	token := ""
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token == "" {
		token = c.Query("access_token")
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.deps.TokenManager.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, subject)
	c.Next()
}

func (h *httpHandler) viewerID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}

// filterFields keeps only the allowed columns of a patch body.
func filterFields(body map[string]any, allowed ...string) map[string]any {
	fields := make(map[string]any, len(body))
	for _, column := range allowed {
		if value, ok := body[column]; ok {
			fields[column] = value
		}
	}
	return fields
}

func bindPatch(c *gin.Context, allowed ...string) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return nil, false
	}
	fields := filterFields(body, allowed...)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_fields"})
		return nil, false
	}
	return fields, true
}

func (h *httpHandler) respondMutationError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrRowNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	h.logger.Error("mutation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "mutation_failed"})
}
