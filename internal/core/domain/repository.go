package domain

import "context"

type HabitRepository interface {
	// Create persists a new habit record.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByOwnerID retrieves all habits belonging to one user.
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Habit, error)

	// Update overwrites the mutable fields of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// Delete permanently removes a habit. No tombstone is kept.
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type SettingsRepository interface {
	// Get returns the stored settings or ErrUserNotFound when the user
	// has never saved any.
	Get(ctx context.Context, userID string) (*ReminderSettings, error)

	// Save upserts the full settings row.
	Save(ctx context.Context, settings *ReminderSettings) error
}
