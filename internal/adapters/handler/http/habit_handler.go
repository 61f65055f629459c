package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dayadict/dayadict-server/internal/adapters/handler/http/middleware"
	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/dayadict/dayadict-server/internal/core/services"
	"github.com/gin-gonic/gin"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Name           string          `json:"name"`
	StoppedAt      domain.StopTime `json:"stopped_at"`
	PreviousPerDay domain.Quantity `json:"previous_per_day"`
}

type updateHabitRequest struct {
	Name           *string          `json:"name"`
	StoppedAt      *domain.StopTime `json:"stopped_at"`
	PreviousPerDay *domain.Quantity `json:"previous_per_day"`
}

type importRequest struct {
	Records []domain.RawRecord `json:"records" binding:"required"`
}

// habitResponse adds the derived counters. They are computed at render
// time from the stop date, never stored.
type habitResponse struct {
	*domain.Habit
	DaysSince    int `json:"days_since"`
	UnitsAvoided int `json:"units_avoided"`
}

func toHabitResponse(h *domain.Habit, now time.Time) habitResponse {
	days := domain.DaysSince(h.StoppedAt, now)
	return habitResponse{
		Habit:        h,
		DaysSince:    days,
		UnitsAvoided: domain.UnitsAvoided(days, h.PreviousPerDay),
	}
}

func toHabitResponses(habits []*domain.Habit, now time.Time) []habitResponse {
	out := make([]habitResponse, 0, len(habits))
	for _, h := range habits {
		out = append(out, toHabitResponse(h, now))
	}
	return out
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.POST("/import", h.Import)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

func writeDomainError(c *gin.Context, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrDeleteNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "deletion requires confirmation"})
	case errors.Is(err, domain.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateHabitInput{
		OwnerID:        userID,
		Name:           req.Name,
		StoppedAt:      req.StoppedAt,
		PreviousPerDay: req.PreviousPerDay,
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toHabitResponse(habit, time.Now().UTC()))
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByOwnerID(c.Request.Context(), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toHabitResponses(list, time.Now().UTC()))
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateHabitInput{
		ID:             c.Param("id"),
		OwnerID:        userID,
		Name:           req.Name,
		StoppedAt:      req.StoppedAt,
		PreviousPerDay: req.PreviousPerDay,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toHabitResponse(habit, time.Now().UTC()))
}

// Delete requires an explicit ?confirm=true. Without it nothing is
// touched and the client gets a 400.
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	confirmed := c.Query("confirm") == "true"

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID, confirmed)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Import(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.svc.ImportRecords(c.Request.Context(), userID, req.Records)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
