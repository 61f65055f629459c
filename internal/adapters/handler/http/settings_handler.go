package http

import (
	"net/http"

	"github.com/dayadict/dayadict-server/internal/adapters/handler/http/middleware"
	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/dayadict/dayadict-server/internal/core/services"
	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	svc *services.SettingsService
}

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		svc: svc,
	}
}

// updateSettingsRequest is a partial update: absent fields are left
// exactly as stored.
type updateSettingsRequest struct {
	Enabled *bool `json:"enabled"`
	Hour    *int  `json:"hour"`
	Minute  *int  `json:"minute"`
}

type deviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
		settings.POST("/device", h.RegisterDevice)
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	settings, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.ReminderSettingsPatch{
		Enabled: req.Enabled,
		Hour:    req.Hour,
		Minute:  req.Minute,
	}

	settings, err := h.svc.Save(c.Request.Context(), userID, patch)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) RegisterDevice(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.svc.RegisterDeviceToken(c.Request.Context(), userID, req.Token)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
