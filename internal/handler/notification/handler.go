package notification

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/middleware"
	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/service/notification"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/summary", h.Summary)
		notifications.POST("/mark-read", h.MarkRead)
	}
}

// List returns the caller's notifications, newest first. ?unread=true
// filters to unread only.
func (h *Handler) List(c *gin.Context) {
	recipient, ok := middleware.CurrentRecipient(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.service.List(c.Request.Context(), recipient, unreadOnly, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

// Summary backs the bell badge: unread count plus the latest notifications.
func (h *Handler) Summary(c *gin.Context) {
	recipient, ok := middleware.CurrentRecipient(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), recipient)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, summary)
}

// MarkRead flips a batch of notifications to read. Repeating the request
// with the same IDs is a no-op and still succeeds.
func (h *Handler) MarkRead(c *gin.Context) {
	recipient, ok := middleware.CurrentRecipient(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.NotificationIDs))
	for _, raw := range req.NotificationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid notification ID", err))
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.service.MarkRead(c.Request.Context(), ids, recipient)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"marked_read": updated})
}
