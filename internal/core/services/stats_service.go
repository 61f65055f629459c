package services

import (
	"context"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/domain"
)

// DashboardStats is the header summary: everything here is derived on
// render from the stop dates and rates, never persisted.
type DashboardStats struct {
	TotalHabits       int `json:"total_habits"`
	TotalDays         int `json:"total_days"`
	TotalUnitsAvoided int `json:"total_units_avoided"`
}

type StatsService struct {
	habitRepo domain.HabitRepository
}

func NewStatsService(habitRepo domain.HabitRepository) *StatsService {
	return &StatsService{
		habitRepo: habitRepo,
	}
}

func (s *StatsService) GetDashboard(ctx context.Context, ownerID string, now time.Time) (*DashboardStats, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	habits, err := s.habitRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalHabits: len(habits)}
	for _, h := range habits {
		days := domain.DaysSince(h.StoppedAt, now)
		stats.TotalDays += days
		stats.TotalUnitsAvoided += domain.UnitsAvoided(days, h.PreviousPerDay)
	}

	return stats, nil
}
