package audit

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linguacare/admin-api/internal/service/audit"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.service.List(c.Request.Context(), c.Query("entity_type"), limit)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, logs)
}
