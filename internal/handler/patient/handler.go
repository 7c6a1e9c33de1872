package patient

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	repo repository.PatientRepository
}

func NewHandler(repo repository.PatientRepository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the read endpoints, available to any authenticated
// role.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.List)
		patients.GET("/:id", h.Get)
	}
}

// RegisterAdminRoutes mounts the write endpoints.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.Create)
		patients.PUT("/:id", h.Update)
		patients.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	patient := &model.Patient{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		PreferredLanguage: req.PreferredLanguage,
	}
	if err := h.repo.Create(c.Request.Context(), patient); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithCreated(c, patient)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	patient, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("patient", err))
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) List(c *gin.Context) {
	patients, err := h.repo.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	patient, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("patient", err))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.Email = req.Email
	patient.Phone = req.Phone
	patient.PreferredLanguage = req.PreferredLanguage

	if err := h.repo.Update(c.Request.Context(), patient); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
