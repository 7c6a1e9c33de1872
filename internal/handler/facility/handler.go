package facility

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	repo repository.FacilityRepository
}

func NewHandler(repo repository.FacilityRepository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the read endpoints, available to any authenticated
// role.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	facilities := r.Group("/facilities")
	{
		facilities.GET("", h.List)
		facilities.GET("/:id", h.Get)
	}
}

// RegisterAdminRoutes mounts the write endpoints.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	facilities := r.Group("/facilities")
	{
		facilities.POST("", h.Create)
		facilities.PUT("/:id", h.Update)
		facilities.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	facility := &model.Facility{
		Name:      req.Name,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Phone:     req.Phone,
		Email:     req.Email,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Active:    true,
	}
	if err := h.repo.Create(c.Request.Context(), facility); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithCreated(c, facility)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid facility ID", err))
		return
	}

	facility, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("facility", err))
		return
	}
	httputil.RespondWithSuccess(c, facility)
}

func (h *Handler) List(c *gin.Context) {
	facilities, err := h.repo.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, facilities)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid facility ID", err))
		return
	}

	facility, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("facility", err))
		return
	}

	var req model.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	facility.Name = req.Name
	facility.Street = req.Street
	facility.City = req.City
	facility.State = req.State
	facility.ZipCode = req.ZipCode
	facility.Phone = req.Phone
	facility.Email = req.Email
	facility.Latitude = req.Latitude
	facility.Longitude = req.Longitude

	if err := h.repo.Update(c.Request.Context(), facility); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, facility)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid facility ID", err))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
