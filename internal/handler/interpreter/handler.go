package interpreter

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/httputil"
)

type Handler struct {
	repo repository.InterpreterRepository
}

func NewHandler(repo repository.InterpreterRepository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the read endpoints, available to any authenticated
// role.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	interpreters := r.Group("/interpreters")
	{
		interpreters.GET("", h.List)
		interpreters.GET("/:id", h.Get)
	}
}

// RegisterAdminRoutes mounts the write endpoints.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	interpreters := r.Group("/interpreters")
	{
		interpreters.POST("", h.Create)
		interpreters.PUT("/:id", h.Update)
		interpreters.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateInterpreterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	interp := &model.Interpreter{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Languages:     pq.StringArray(req.Languages),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		CoverageMiles: req.CoverageMiles,
		Active:        true,
	}
	if err := h.repo.Create(c.Request.Context(), interp); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithCreated(c, interp)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid interpreter ID", err))
		return
	}

	interp, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("interpreter", err))
		return
	}
	httputil.RespondWithSuccess(c, interp)
}

func (h *Handler) List(c *gin.Context) {
	interpreters, err := h.repo.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, interpreters)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid interpreter ID", err))
		return
	}

	interp, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("interpreter", err))
		return
	}

	var req model.CreateInterpreterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	interp.FirstName = req.FirstName
	interp.LastName = req.LastName
	interp.Email = req.Email
	interp.Phone = req.Phone
	interp.Languages = pq.StringArray(req.Languages)
	interp.Latitude = req.Latitude
	interp.Longitude = req.Longitude
	interp.CoverageMiles = req.CoverageMiles

	if err := h.repo.Update(c.Request.Context(), interp); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, interp)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid interpreter ID", err))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, apperrors.Persistence(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
