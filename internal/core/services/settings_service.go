package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/domain"
)

// SchedulerPort is the slice of the reminder scheduler this service
// drives: saves re-arm the one-shot timer while reminders are enabled,
// and cancel it otherwise. Nil disables local scheduling (settings
// still persist).
type SchedulerPort interface {
	Arm(userID string, hour, minute int) time.Duration
	Cancel(userID string)
}

type SettingsService struct {
	repo      domain.SettingsRepository
	scheduler SchedulerPort
}

func NewSettingsService(repo domain.SettingsRepository, scheduler SchedulerPort) *SettingsService {
	return &SettingsService{
		repo:      repo,
		scheduler: scheduler,
	}
}

// Get returns the stored settings, falling back to the defaults for a
// user who never saved any.
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.ReminderSettings, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.DefaultReminderSettings(userID), nil
		}
		return nil, fmt.Errorf("settings service: get failed: %w", err)
	}
	return settings, nil
}

// Save merges the patch into the stored settings: only fields present in
// the patch are written, nothing else is overwritten. While reminders
// are enabled the local one-shot timer is re-armed with the saved time.
func (s *SettingsService) Save(ctx context.Context, userID string, patch domain.ReminderSettingsPatch) (*domain.ReminderSettings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := settings.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("settings service: save failed: %w", err)
	}

	if s.scheduler != nil {
		if settings.Enabled {
			s.scheduler.Arm(userID, settings.Hour, settings.Minute)
		} else {
			s.scheduler.Cancel(userID)
		}
	}

	return settings, nil
}

// RegisterDeviceToken persists the push registration token, the only
// artifact kept for a future server-sent reminder.
func (s *SettingsService) RegisterDeviceToken(ctx context.Context, userID, token string) (*domain.ReminderSettings, error) {
	if token == "" {
		return nil, domain.NewValidationError("token", "cannot be empty")
	}
	return s.Save(ctx, userID, domain.ReminderSettingsPatch{FCMToken: &token})
}
