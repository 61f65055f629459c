package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

// PostgresSettingsRepository stores one reminder settings row per user.
// Save is a full-row upsert; the field-level merge happens on the domain
// object before the row gets here.
type PostgresSettingsRepository struct {
	db *sqlx.DB
}

func NewPostgresSettingsRepository(db *sqlx.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, userID string) (*domain.ReminderSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		SELECT user_id, enabled, hour, minute, fcm_token, updated_at
		FROM reminder_settings
		WHERE user_id = $1
	`

	var s domain.ReminderSettings

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID,
		&s.Enabled,
		&s.Hour,
		&s.Minute,
		&s.FCMToken,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get reminder settings failed: %w", err)
	}

	return &s, nil
}

func (r *PostgresSettingsRepository) Save(ctx context.Context, settings *domain.ReminderSettings) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO reminder_settings (user_id, enabled, hour, minute, fcm_token, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			hour = EXCLUDED.hour,
			minute = EXCLUDED.minute,
			fcm_token = EXCLUDED.fcm_token,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.UserID,
		settings.Enabled,
		settings.Hour,
		settings.Minute,
		settings.FCMToken,
		settings.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("repository: save reminder settings failed: %w", err)
	}

	return nil
}
