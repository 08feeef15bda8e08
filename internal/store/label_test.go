package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nathanchica/life-event-logger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelColumns() []string {
	return []string{"id", "user_id", "name", "created_at", "updated_at"}
}

func TestLabelRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabelRepository(db)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM event_labels")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(labelColumns()).
			AddRow(uuid.New(), userID, "health", now, now).
			AddRow(uuid.New(), userID, "home", now, now))

	labels, err := repo.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "health", labels[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelRepository_ListByUserEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabelRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM event_labels")).
		WillReturnRows(sqlmock.NewRows(labelColumns()))

	labels, err := repo.ListByUser(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelRepository_CreateDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabelRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO event_labels")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = repo.Create(context.Background(), types.EventLabel{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "health",
	})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelRepository_UpdateMissingLabel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabelRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE event_labels")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.Update(context.Background(), types.EventLabel{ID: uuid.New(), Name: "health"})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelRepository_DeleteMissingLabel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabelRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM event_labels")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
