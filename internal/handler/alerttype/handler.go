package alerttype

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mybbstuff/alerts-engine/internal/handler"
	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/registry"
	"github.com/mybbstuff/alerts-engine/internal/repository"
)

// Handler is the plain read/write contract over alert type records. Types
// can be added and toggled but never deleted.
type Handler struct {
	repo   repository.AlertTypeRepository
	loader *registry.Loader
}

func NewHandler(repo repository.AlertTypeRepository, loader *registry.Loader) *Handler {
	return &Handler{repo: repo, loader: loader}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	types := r.Group("/alert-types")
	{
		types.GET("", h.ListTypes)
		types.POST("", h.CreateType)
		types.PATCH("/:code", h.UpdateType)
	}
}

func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(types))
}

func (h *Handler) CreateType(c *gin.Context) {
	var req model.CreateAlertTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	alertType := &model.AlertType{
		Code:    req.Code,
		Enabled: *req.Enabled,
	}

	if err := h.repo.Create(c.Request.Context(), alertType); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	h.loader.Invalidate()
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(alertType))
}

// UpdateType toggles the global enable flag. The registry cache is
// invalidated so the change is visible to the next unit of work; existing
// alerts of a disabled type are deliberately left in place.
func (h *Handler) UpdateType(c *gin.Context) {
	code := c.Param("code")

	var req model.UpdateAlertTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.repo.SetEnabled(c.Request.Context(), code, *req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	h.loader.Invalidate()

	alertType, err := h.repo.GetByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alertType))
}
