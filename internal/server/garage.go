package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/midniteauto/backend/internal/garage"
	"go.uber.org/zap"
)

const publicBuildLimit = 40

func (h *httpHandler) handleListCars(c *gin.Context) {
	cars, err := h.deps.Cars.List(c.Request.Context(), h.viewerID(c))
	if err != nil {
		h.logger.Error("car list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "garage_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

func (h *httpHandler) handlePublicBuilds(c *gin.Context) {
	cars, err := h.deps.Cars.PublicBuilds(c.Request.Context(), publicBuildLimit)
	if err != nil {
		h.logger.Error("public build list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "garage_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

func (h *httpHandler) handleGetCar(c *gin.Context) {
	car, err := h.deps.Cars.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

type carPayload struct {
	Make             string `json:"make"`
	Model            string `json:"model"`
	Year             int    `json:"year"`
	Trim             string `json:"trim"`
	IsPublic         bool   `json:"is_public"`
	CoverBase64      string `json:"cover_base64"`
	CoverContentType string `json:"cover_content_type"`
}

func (h *httpHandler) handleCreateCar(c *gin.Context) {
	var request carPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Make == "" || request.Model == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	car := garage.Car{
		UserID:   h.viewerID(c),
		Make:     request.Make,
		Model:    request.Model,
		Year:     request.Year,
		Trim:     request.Trim,
		IsPublic: request.IsPublic,
	}

	var cover []byte
	if request.CoverBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(request.CoverBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cover"})
			return
		}
		cover = decoded
	}

	err := h.deps.Cars.AddWithCover(c.Request.Context(), &car, cover, request.CoverContentType)
	if errors.Is(err, garage.ErrCoverNotApplied) {
		// The build exists; only the cover is missing.
		c.JSON(http.StatusCreated, gin.H{"car": car, "warning": "cover_not_applied"})
		return
	}
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"car": car})
}

func (h *httpHandler) handleUpdateCar(c *gin.Context) {
	fields, ok := bindPatch(c, "make", "model", "year", "trim", "cover_url", "is_public")
	if !ok {
		return
	}
	car, err := h.deps.Cars.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *httpHandler) handleDeleteCar(c *gin.Context) {
	if err := h.deps.Cars.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListParts(c *gin.Context) {
	parts, err := h.deps.Parts.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("part list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "parts_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

type partPayload struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Brand      string `json:"brand"`
	PriceCents int64  `json:"price_cents"`
	Installed  bool   `json:"installed"`
}

func (h *httpHandler) handleAddPart(c *gin.Context) {
	var request partPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	part := garage.Part{
		CarID:      c.Param("id"),
		Name:       request.Name,
		Category:   request.Category,
		Brand:      request.Brand,
		PriceCents: request.PriceCents,
		Installed:  request.Installed,
	}
	if err := h.deps.Parts.Add(c.Request.Context(), &part); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, part)
}

func (h *httpHandler) handleUpdatePart(c *gin.Context) {
	fields, ok := bindPatch(c, "name", "category", "brand", "price_cents", "installed")
	if !ok {
		return
	}
	part, err := h.deps.Parts.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *httpHandler) handleDeletePart(c *gin.Context) {
	if err := h.deps.Parts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListMaintenance(c *gin.Context) {
	logs, err := h.deps.Maintenance.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("maintenance list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "maintenance_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

type maintenancePayload struct {
	Title       string    `json:"title"`
	Notes       string    `json:"notes"`
	Odometer    int64     `json:"odometer"`
	CostCents   int64     `json:"cost_cents"`
	PerformedAt time.Time `json:"performed_at"`
}

func (h *httpHandler) handleAddMaintenance(c *gin.Context) {
	var request maintenancePayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	log := garage.MaintenanceLog{
		CarID:       c.Param("id"),
		Title:       request.Title,
		Notes:       request.Notes,
		Odometer:    request.Odometer,
		CostCents:   request.CostCents,
		PerformedAt: request.PerformedAt,
	}
	if err := h.deps.Maintenance.Add(c.Request.Context(), &log); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *httpHandler) handleUpdateMaintenance(c *gin.Context) {
	fields, ok := bindPatch(c, "title", "notes", "odometer", "cost_cents", "performed_at")
	if !ok {
		return
	}
	log, err := h.deps.Maintenance.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *httpHandler) handleDeleteMaintenance(c *gin.Context) {
	if err := h.deps.Maintenance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListTasks(c *gin.Context) {
	tasks, err := h.deps.Tasks.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("task list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tasks_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *httpHandler) handleOpenTaskCount(c *gin.Context) {
	count, err := h.deps.Tasks.OpenCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("open task count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type taskPayload struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

func (h *httpHandler) handleAddTask(c *gin.Context) {
	var request taskPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	task := garage.Task{CarID: c.Param("id"), Title: request.Title, Done: request.Done}
	if err := h.deps.Tasks.Add(c.Request.Context(), &task); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *httpHandler) handleUpdateTask(c *gin.Context) {
	fields, ok := bindPatch(c, "title", "done")
	if !ok {
		return
	}
	task, err := h.deps.Tasks.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *httpHandler) handleDeleteTask(c *gin.Context) {
	if err := h.deps.Tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListPhotos(c *gin.Context) {
	photos, err := h.deps.Photos.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("photo list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "photos_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

type photoPayload struct {
	Caption     string `json:"caption"`
	DataBase64  string `json:"data_base64"`
	ContentType string `json:"content_type"`
}

func (h *httpHandler) handleAddPhoto(c *gin.Context) {
	var request photoPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.DataBase64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	data, err := base64.StdEncoding.DecodeString(request.DataBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_image"})
		return
	}
	photo := garage.Photo{CarID: c.Param("id"), Caption: request.Caption}
	if err := h.deps.Photos.AddFromBytes(c.Request.Context(), &photo, data, request.ContentType); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *httpHandler) handleDeletePhoto(c *gin.Context) {
	if err := h.deps.Photos.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListTimeline(c *gin.Context) {
	entries, err := h.deps.Timeline.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("timeline list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "timeline_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type timelinePayload struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (h *httpHandler) handleAddTimelineEntry(c *gin.Context) {
	var request timelinePayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	entry := garage.TimelineEntry{
		CarID:       c.Param("id"),
		Title:       request.Title,
		Description: request.Description,
		OccurredAt:  request.OccurredAt,
	}
	if err := h.deps.Timeline.Add(c.Request.Context(), &entry); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *httpHandler) handleUpdateTimelineEntry(c *gin.Context) {
	fields, ok := bindPatch(c, "title", "description", "occurred_at")
	if !ok {
		return
	}
	entry, err := h.deps.Timeline.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *httpHandler) handleDeleteTimelineEntry(c *gin.Context) {
	if err := h.deps.Timeline.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
