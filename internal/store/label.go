package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/types"
)

// LabelRepository handles persistence for event labels.
type LabelRepository struct {
	db *sql.DB
}

func NewLabelRepository(db *sql.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.EventLabel, error) {
	const query = `
		SELECT id, user_id, name, created_at, updated_at
		FROM event_labels
		WHERE user_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]types.EventLabel, 0)
	for rows.Next() {
		var label types.EventLabel
		if err := rows.Scan(&label.ID, &label.UserID, &label.Name, &label.CreatedAt, &label.UpdatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (r *LabelRepository) Get(ctx context.Context, id uuid.UUID) (types.EventLabel, error) {
	const query = `
		SELECT id, user_id, name, created_at, updated_at
		FROM event_labels
		WHERE id = $1`
	var label types.EventLabel
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&label.ID,
		&label.UserID,
		&label.Name,
		&label.CreatedAt,
		&label.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.EventLabel{}, ErrNotFound
		}
		return types.EventLabel{}, err
	}
	return label, nil
}

func (r *LabelRepository) Create(ctx context.Context, label types.EventLabel) (types.EventLabel, error) {
	now := time.Now()
	label.CreatedAt = now
	label.UpdatedAt = now

	const query = `
		INSERT INTO event_labels (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		label.ID,
		label.UserID,
		label.Name,
		label.CreatedAt,
		label.UpdatedAt,
	); err != nil {
		return types.EventLabel{}, mapConstraintError(err)
	}
	return label, nil
}

func (r *LabelRepository) Update(ctx context.Context, label types.EventLabel) (types.EventLabel, error) {
	label.UpdatedAt = time.Now()

	const query = `
		UPDATE event_labels
		SET name = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, label.Name, label.UpdatedAt, label.ID)
	if err != nil {
		return types.EventLabel{}, mapConstraintError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.EventLabel{}, err
	}
	if affected == 0 {
		return types.EventLabel{}, ErrNotFound
	}
	return label, nil
}

func (r *LabelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM event_labels WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
