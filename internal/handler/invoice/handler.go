package invoice

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/service/invoice"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	service *invoice.Service
}

func NewHandler(service *invoice.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	invoices := r.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
	}
	r.GET("/interpreters/:id/payouts", h.ListPayouts)
}

func (h *Handler) List(c *gin.Context) {
	invoices, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, invoices)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid invoice ID", err))
		return
	}

	inv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, inv)
}

func (h *Handler) ListPayouts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid interpreter ID", err))
		return
	}

	payouts, err := h.service.ListPayouts(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, payouts)
}
