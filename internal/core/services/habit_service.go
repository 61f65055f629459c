package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/domain"
)

// ChangePublisher is notified after every successful write so live
// subscriptions re-receive the owner's full habit set. The write call's
// return and the feed echo race; subscribers treat the feed as the
// source of truth.
type ChangePublisher interface {
	Publish(ctx context.Context, ownerID string)
}

type HabitService struct {
	repo domain.HabitRepository
	feed ChangePublisher
}

func NewHabitService(repo domain.HabitRepository, feed ChangePublisher) *HabitService {
	return &HabitService{
		repo: repo,
		feed: feed,
	}
}

type CreateHabitInput struct {
	OwnerID        string
	Name           string
	StoppedAt      domain.StopTime
	PreviousPerDay domain.Quantity
}

type UpdateHabitInput struct {
	ID             string
	OwnerID        string
	Name           *string
	StoppedAt      *domain.StopTime
	PreviousPerDay *domain.Quantity
}

func (s *HabitService) publish(ctx context.Context, ownerID string) {
	if s.feed != nil {
		s.feed.Publish(ctx, ownerID)
	}
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	if !input.StoppedAt.Valid() {
		return nil, domain.NewValidationError("stopped_at", "must be a valid date")
	}
	stoppedAt, _ := input.StoppedAt.Resolve(time.Now().UTC())

	rate := 0.0
	if input.PreviousPerDay.Present() {
		if !input.PreviousPerDay.Valid() {
			return nil, domain.NewValidationError("previous_per_day", "must be a number")
		}
		rate = input.PreviousPerDay.Value()
	}

	habit, err := domain.NewHabit(input.OwnerID, input.Name, stoppedAt, rate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: create failed: %w", err)
	}

	s.publish(ctx, habit.OwnerID)
	return habit, nil
}

func (s *HabitService) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.repo.ListByOwnerID(ctx, ownerID)
}

// Update applies only the provided fields. OwnerID is never changed.
func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	habit, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if habit.OwnerID != input.OwnerID {
		return nil, domain.ErrHabitNotFound
	}

	if input.Name != nil {
		if err := habit.Rename(*input.Name); err != nil {
			return nil, err
		}
	}

	if input.StoppedAt != nil {
		if !input.StoppedAt.Valid() {
			return nil, domain.NewValidationError("stopped_at", "must be a valid date")
		}
		stoppedAt, _ := input.StoppedAt.Resolve(time.Now().UTC())
		if err := habit.Restop(stoppedAt); err != nil {
			return nil, err
		}
	}

	if input.PreviousPerDay != nil {
		if !input.PreviousPerDay.Valid() {
			return nil, domain.NewValidationError("previous_per_day", "must be a number")
		}
		if err := habit.ChangeRate(input.PreviousPerDay.Value()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: update failed: %w", err)
	}

	s.publish(ctx, habit.OwnerID)
	return habit, nil
}

// Delete is irreversible, so it refuses to touch the repository until
// the caller has confirmed.
func (s *HabitService) Delete(ctx context.Context, id, ownerID string, confirmed bool) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	if !confirmed {
		return domain.ErrDeleteNotConfirmed
	}

	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if habit.OwnerID != ownerID {
		return domain.ErrHabitNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("habit service: delete failed: %w", err)
	}

	s.publish(ctx, ownerID)
	return nil
}

// ImportRecords normalizes documents from a legacy export and persists
// the ones owned by ownerID. Records with an unparseable stop date are
// still imported (their counter reads zero) and the parse failure is
// logged, never surfaced.
func (s *HabitService) ImportRecords(ctx context.Context, ownerID string, records []domain.RawRecord) (int, error) {
	if ownerID == "" {
		return 0, domain.ErrNotAuthenticated
	}

	now := time.Now().UTC()
	imported := 0

	for _, raw := range records {
		habit, parsed := domain.NormalizeRecord(raw, ownerID, now)
		if habit == nil {
			continue
		}
		if !parsed {
			log.Printf("import: unparseable stop date on record %q for user %s, defaulting to now", raw.ID, ownerID)
		}

		if err := s.repo.Create(ctx, habit); err != nil {
			return imported, fmt.Errorf("habit service: import failed on record %q: %w", raw.ID, err)
		}
		imported++
	}

	if imported > 0 {
		s.publish(ctx, ownerID)
	}
	return imported, nil
}
