package appointment

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/middleware"
	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/service/appointment"
	"github.com/linguacare/admin-api/internal/service/offer"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	appointments *appointment.Service
	offers       *offer.Service
}

func NewHandler(appointments *appointment.Service, offers *offer.Service) *Handler {
	return &Handler{appointments: appointments, offers: offers}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.DELETE("/:id", h.Delete)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.POST("/:id/expand-offer", h.ExpandOffer)
		appointments.POST("/:id/accept-offer", h.AcceptOffer)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	apt, err := h.appointments.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	apt, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if v := c.Query("facility_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid facility ID", err))
			return
		}
		filters.FacilityID = id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("interpreter_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid interpreter ID", err))
			return
		}
		filters.InterpreterID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid start_date", err))
			return
		}
		filters.StartDate = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid end_date", err))
			return
		}
		filters.EndDate = t
	}

	appointments, err := h.appointments.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

// UpdateStatus moves an appointment through the status ledger. The requested
// status must be reachable from the current one.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	change, err := h.appointments.Transition(c.Request.Context(), id, req.Status, req.CancelReason, actorID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, change)
}

// ExpandOffer grows the offer radius one step and returns only the
// interpreters this expansion added.
func (h *Handler) ExpandOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	result, err := h.offers.ExpandRadius(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) AcceptOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	interpreterID, err := uuid.Parse(req.InterpreterID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid interpreter ID", err))
		return
	}

	change, err := h.appointments.AcceptOffer(c.Request.Context(), id, interpreterID, actorID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, change)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	if err := h.appointments.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func actorID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString(middleware.ContextUserID))
	return id
}
