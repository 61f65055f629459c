package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

// CachedHabitRepository caches per-owner habit lists. Every write
// invalidates the owner's list so the live feed and the dashboard never
// serve a stale snapshot longer than the invalidation round-trip.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedHabitRepository) cacheKey(ownerID string) string {
	return fmt.Sprintf("habits:%s", ownerID)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, ownerID string) {
	if err := r.cache.Del(ctx, r.cacheKey(ownerID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for owner %s: %v", ownerID, err)
	}
}

func (r *CachedHabitRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	key := r.cacheKey(ownerID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val), &habits); err == nil {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted data for owner %s, cleaning up key", ownerID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := r.next.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, 30*time.Minute).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.OwnerID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.OwnerID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.OwnerID)
	}

	return r.next.Delete(ctx, id)
}
