package alert

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mybbstuff/alerts-engine/internal/handler"
	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/service/alert"
	"github.com/mybbstuff/alerts-engine/internal/service/preference"
	"github.com/mybbstuff/alerts-engine/pkg/errors"
)

type Handler struct {
	engine alert.Service
	prefs  preference.Service
}

func NewHandler(engine alert.Service, prefs preference.Service) *Handler {
	return &Handler{engine: engine, prefs: prefs}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/users/:uid/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/unread-count", h.UnreadCount)
		alerts.POST("/read", h.MarkRead)
	}

	prefs := r.Group("/users/:uid/alert-preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.UpdatePreferences)
	}
}

func (h *Handler) ListAlerts(c *gin.Context) {
	uid, err := parseUID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid uid"))
		return
	}

	var query model.ListAlertsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	alerts, err := h.engine.ListForUser(c.Request.Context(), uid, &query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	uid, err := parseUID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid uid"))
		return
	}

	count, err := h.engine.UnreadCount(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unread": count}))
}

func (h *Handler) MarkRead(c *gin.Context) {
	uid, err := parseUID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid uid"))
		return
	}

	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.engine.MarkRead(c.Request.Context(), uid, req.ObjectType, req.ObjectID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) GetPreferences(c *gin.Context) {
	uid, err := parseUID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid uid"))
		return
	}

	pref, err := h.prefs.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pref))
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	uid, err := parseUID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid uid"))
		return
	}

	var req model.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.prefs.Update(c.Request.Context(), uid, req.DisabledTypes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func parseUID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("uid"), 10, 64)
}

func respondError(c *gin.Context, err error) {
	if errors.IsValidation(err) {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
}
