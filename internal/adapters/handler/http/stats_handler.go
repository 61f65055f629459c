package http

import (
	"net/http"
	"time"

	"github.com/dayadict/dayadict-server/internal/adapters/handler/http/middleware"
	"github.com/dayadict/dayadict-server/internal/core/services"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{
		svc: svc,
	}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stats", h.Dashboard)
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	stats, err := h.svc.GetDashboard(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
