package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/types"
)

// EventRepository handles persistence for loggable events, their recorded
// timestamps, and their label associations.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByUser returns the user's events with timestamps (newest-first) and
// attached labels populated. Events are ordered by creation time.
func (r *EventRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.LoggableEvent, error) {
	const query = `
		SELECT id, user_id, name, warning_threshold_in_days, created_at, updated_at
		FROM loggable_events
		WHERE user_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]types.LoggableEvent, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var event types.LoggableEvent
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Name,
			&event.WarningThresholdInDays,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		event.Timestamps = []time.Time{}
		event.Labels = []types.EventLabel{}
		index[event.ID] = len(events)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTimestampsByUser(ctx, userID, events, index); err != nil {
		return nil, err
	}
	if err := r.attachLabelsByUser(ctx, userID, events, index); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepository) Get(ctx context.Context, id uuid.UUID) (types.LoggableEvent, error) {
	const query = `
		SELECT id, user_id, name, warning_threshold_in_days, created_at, updated_at
		FROM loggable_events
		WHERE id = $1`
	var event types.LoggableEvent
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.UserID,
		&event.Name,
		&event.WarningThresholdInDays,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LoggableEvent{}, ErrNotFound
		}
		return types.LoggableEvent{}, err
	}

	event.Timestamps, err = r.eventTimestamps(ctx, id)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	event.Labels, err = r.eventLabels(ctx, id)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event types.LoggableEvent) (types.LoggableEvent, error) {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	const query = `
		INSERT INTO loggable_events (id, user_id, name, warning_threshold_in_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.Name,
		event.WarningThresholdInDays,
		event.CreatedAt,
		event.UpdatedAt,
	); err != nil {
		return types.LoggableEvent{}, mapConstraintError(err)
	}

	if event.Timestamps == nil {
		event.Timestamps = []time.Time{}
	}
	if event.Labels == nil {
		event.Labels = []types.EventLabel{}
	}
	return event, nil
}

// Update persists the event's name and warning threshold.
func (r *EventRepository) Update(ctx context.Context, event types.LoggableEvent) (types.LoggableEvent, error) {
	event.UpdatedAt = time.Now()

	const query = `
		UPDATE loggable_events
		SET name = $1,
			warning_threshold_in_days = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		event.Name,
		event.WarningThresholdInDays,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return types.LoggableEvent{}, mapConstraintError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.LoggableEvent{}, err
	}
	if affected == 0 {
		return types.LoggableEvent{}, ErrNotFound
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM loggable_events WHERE id = $1`
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

// AddTimestamp records an occurrence. Duplicate instants are ignored, so the
// stored set stays deduplicated.
func (r *EventRepository) AddTimestamp(ctx context.Context, eventID uuid.UUID, recordedAt time.Time) error {
	const query = `
		INSERT INTO event_timestamps (event_id, recorded_at)
		VALUES ($1, $2)
		ON CONFLICT (event_id, recorded_at) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, eventID, recordedAt); err != nil {
		return err
	}
	return r.touch(ctx, eventID)
}

// RemoveTimestamp deletes an occurrence. Removing an instant that was never
// recorded returns ErrNotFound.
func (r *EventRepository) RemoveTimestamp(ctx context.Context, eventID uuid.UUID, recordedAt time.Time) error {
	const query = `
		DELETE FROM event_timestamps
		WHERE event_id = $1 AND recorded_at = $2`
	result, err := r.db.ExecContext(ctx, query, eventID, recordedAt)
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
	return r.touch(ctx, eventID)
}

// SetLabels replaces the event's label associations with the given set.
func (r *EventRepository) SetLabels(ctx context.Context, eventID uuid.UUID, labelIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM loggable_event_labels WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	const insert = `
		INSERT INTO loggable_event_labels (event_id, label_id)
		VALUES ($1, $2)`
	for _, labelID := range labelIDs {
		if _, err := tx.ExecContext(ctx, insert, eventID, labelID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE loggable_events SET updated_at = $1 WHERE id = $2`, time.Now(), eventID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *EventRepository) touch(ctx context.Context, eventID uuid.UUID) error {
	const query = `UPDATE loggable_events SET updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), eventID)
	return err
}

func (r *EventRepository) eventTimestamps(ctx context.Context, eventID uuid.UUID) ([]time.Time, error) {
	const query = `
		SELECT recorded_at
		FROM event_timestamps
		WHERE event_id = $1
		ORDER BY recorded_at DESC`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timestamps := []time.Time{}
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		timestamps = append(timestamps, ts)
	}
	return timestamps, rows.Err()
}

func (r *EventRepository) eventLabels(ctx context.Context, eventID uuid.UUID) ([]types.EventLabel, error) {
	const query = `
		SELECT l.id, l.user_id, l.name, l.created_at, l.updated_at
		FROM event_labels l
		JOIN loggable_event_labels el ON el.label_id = l.id
		WHERE el.event_id = $1
		ORDER BY l.name`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []types.EventLabel{}
	for rows.Next() {
		var label types.EventLabel
		if err := rows.Scan(&label.ID, &label.UserID, &label.Name, &label.CreatedAt, &label.UpdatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (r *EventRepository) attachTimestampsByUser(ctx context.Context, userID uuid.UUID, events []types.LoggableEvent, index map[uuid.UUID]int) error {
	const query = `
		SELECT t.event_id, t.recorded_at
		FROM event_timestamps t
		JOIN loggable_events e ON e.id = t.event_id
		WHERE e.user_id = $1
		ORDER BY t.recorded_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID uuid.UUID
		var ts time.Time
		if err := rows.Scan(&eventID, &ts); err != nil {
			return err
		}
		if i, ok := index[eventID]; ok {
			events[i].Timestamps = append(events[i].Timestamps, ts)
		}
	}
	return rows.Err()
}

func (r *EventRepository) attachLabelsByUser(ctx context.Context, userID uuid.UUID, events []types.LoggableEvent, index map[uuid.UUID]int) error {
	const query = `
		SELECT el.event_id, l.id, l.user_id, l.name, l.created_at, l.updated_at
		FROM event_labels l
		JOIN loggable_event_labels el ON el.label_id = l.id
		JOIN loggable_events e ON e.id = el.event_id
		WHERE e.user_id = $1
		ORDER BY l.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID uuid.UUID
		var label types.EventLabel
		if err := rows.Scan(&eventID, &label.ID, &label.UserID, &label.Name, &label.CreatedAt, &label.UpdatedAt); err != nil {
			return err
		}
		if i, ok := index[eventID]; ok {
			events[i].Labels = append(events[i].Labels, label)
		}
	}
	return rows.Err()
}
