package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/midniteauto/backend/internal/chat"
	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/market"
	"go.uber.org/zap"
)

const defaultEventLimit = 40

func (h *httpHandler) handleListEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var (
		list []events.Event
		err  error
	)
	if c.Query("window") == "upcoming" {
		list, err = h.deps.Events.Upcoming(c.Request.Context(), time.Now().UTC(), limit)
	} else {
		list, err = h.deps.Events.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		h.logger.Error("event list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "events_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

func (h *httpHandler) handleGetEvent(c *gin.Context) {
	event, err := h.deps.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

type eventPayload struct {
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	ImageURL  string    `json:"image_url"`
	EventDate time.Time `json:"event_date"`
}

func (h *httpHandler) handleCreateEvent(c *gin.Context) {
	var request eventPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	event := events.Event{
		UserID:    h.viewerID(c),
		Title:     request.Title,
		Location:  request.Location,
		ImageURL:  request.ImageURL,
		EventDate: request.EventDate,
	}
	if err := h.deps.Events.Add(c.Request.Context(), &event); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *httpHandler) handleUpdateEvent(c *gin.Context) {
	fields, ok := bindPatch(c, "title", "location", "image_url", "event_date")
	if !ok {
		return
	}
	event, err := h.deps.Events.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *httpHandler) handleDeleteEvent(c *gin.Context) {
	if err := h.deps.Events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleAttendeeCount(c *gin.Context) {
	count, err := h.deps.Events.AttendeeCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("attendee count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *httpHandler) handleListChats(c *gin.Context) {
	chats, err := h.deps.Chats.ChatsFor(c.Request.Context(), h.viewerID(c))
	if err != nil {
		h.logger.Error("chat list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chats_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

type openChatPayload struct {
	PeerID string `json:"peer_id"`
}

func (h *httpHandler) handleOpenChat(c *gin.Context) {
	var request openChatPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.PeerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	conversation, err := h.deps.Chats.Open(c.Request.Context(), h.viewerID(c), request.PeerID)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conversation)
}

func (h *httpHandler) handleListMessages(c *gin.Context) {
	messages, err := h.deps.Chats.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("message list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "messages_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type messagePayload struct {
	Content string `json:"content"`
}

func (h *httpHandler) handleSendMessage(c *gin.Context) {
	var request messagePayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	message := chat.Message{
		ChatID:   c.Param("id"),
		SenderID: h.viewerID(c),
		Content:  request.Content,
	}
	if err := h.deps.Chats.Send(c.Request.Context(), &message); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *httpHandler) handleDeleteMessage(c *gin.Context) {
	if err := h.deps.Chats.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListListings(c *gin.Context) {
	var (
		listings []market.Listing
		err      error
	)
	if c.Query("mine") == "true" {
		listings, err = h.deps.Listings.BySeller(c.Request.Context(), h.viewerID(c))
	} else {
		limit := defaultEventLimit
		if raw := c.Query("limit"); raw != "" {
			if parsed, atoiErr := strconv.Atoi(raw); atoiErr == nil && parsed > 0 {
				limit = parsed
			}
		}
		listings, err = h.deps.Listings.Active(c.Request.Context(), limit)
	}
	if err != nil {
		h.logger.Error("listing list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listings_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

type listingPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ImageURL    string `json:"image_url"`
}

func (h *httpHandler) handleCreateListing(c *gin.Context) {
	var request listingPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	listing := market.Listing{
		SellerID:    h.viewerID(c),
		Title:       request.Title,
		Description: request.Description,
		PriceCents:  request.PriceCents,
		ImageURL:    request.ImageURL,
	}
	if err := h.deps.Listings.Add(c.Request.Context(), &listing); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *httpHandler) handleUpdateListing(c *gin.Context) {
	fields, ok := bindPatch(c, "title", "description", "price_cents", "image_url", "status")
	if !ok {
		return
	}
	listing, err := h.deps.Listings.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *httpHandler) handleDeleteListing(c *gin.Context) {
	if err := h.deps.Listings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
