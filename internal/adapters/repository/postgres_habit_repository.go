package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit

	err := row.Scan(
		&h.ID, &h.OwnerID, &h.Name,
		&h.StoppedAt, &h.PreviousPerDay,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &h, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, owner_id, name, stopped_at, previous_per_day, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.OwnerID, h.Name, h.StoppedAt, h.PreviousPerDay,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `
        SELECT id, owner_id, name, stopped_at, previous_per_day, created_at, updated_at
        FROM habits WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	query := `
        SELECT id, owner_id, name, stopped_at, previous_per_day, created_at, updated_at
        FROM habits
        WHERE owner_id = $1
        ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name = $1, stopped_at = $2, previous_per_day = $3, updated_at = $4
        WHERE id = $5`

	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.StoppedAt, h.PreviousPerDay, h.UpdatedAt, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// Delete removes the row permanently. The confirmation gate lives in the
// service layer; by the time a delete reaches here it is final.
func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM habits WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
