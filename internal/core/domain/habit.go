package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrDeleteNotConfirmed = errors.New("delete requires confirmation")
)

// ValidationError marks bad user input on a specific field. No write is
// attempted when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

const (
	DefaultHabitName = "Habitude"
	MaxNameLen       = 100
)

type Habit struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	StoppedAt      time.Time `json:"stopped_at"`
	PreviousPerDay float64   `json:"previous_per_day"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", NewValidationError("name", "cannot be empty")
	}
	if len(trimmed) > MaxNameLen {
		return "", NewValidationError("name", fmt.Sprintf("too long (max %d chars)", MaxNameLen))
	}
	return trimmed, nil
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return NewValidationError("previous_per_day", "must be a finite number")
	}
	if rate < 0 {
		return NewValidationError("previous_per_day", "cannot be negative")
	}
	return nil
}

func NewHabit(ownerID, name string, stoppedAt time.Time, previousPerDay float64) (*Habit, error) {
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}

	cleanName, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if stoppedAt.IsZero() {
		return nil, NewValidationError("stopped_at", "must be a valid date")
	}

	if err := validateRate(previousPerDay); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Name:           cleanName,
		StoppedAt:      stoppedAt.UTC(),
		PreviousPerDay: previousPerDay,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Rename, Restop and ChangeRate mutate one field each after validation.
// OwnerID is never touched after creation.

func (h *Habit) Rename(name string) error {
	cleanName, err := validateName(name)
	if err != nil {
		return err
	}
	h.Name = cleanName
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Restop(stoppedAt time.Time) error {
	if stoppedAt.IsZero() {
		return NewValidationError("stopped_at", "must be a valid date")
	}
	h.StoppedAt = stoppedAt.UTC()
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) ChangeRate(previousPerDay float64) error {
	if err := validateRate(previousPerDay); err != nil {
		return err
	}
	h.PreviousPerDay = previousPerDay
	h.UpdatedAt = time.Now().UTC()
	return nil
}
