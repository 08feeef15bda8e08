package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/nathanchica/life-event-logger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUserStore struct {
	user  types.User
	err   error
	calls int
}

func (s *stubUserStore) GetByEmail(_ context.Context, _ string) (types.User, error) {
	s.calls++
	if s.err != nil {
		return types.User{}, s.err
	}
	return s.user, nil
}

type stubEventStore struct {
	events []types.LoggableEvent
	err    error
	calls  int
}

func (s *stubEventStore) ListByUser(_ context.Context, _ uuid.UUID) ([]types.LoggableEvent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func newEvaluator(users *stubUserStore, events *stubEventStore, now time.Time) *ThresholdEvaluator {
	return NewThresholdEvaluator(users, events, zap.NewNop()).
		WithClock(func() time.Time { return now })
}

func testUser() types.User {
	return types.User{ID: uuid.New(), Email: "nathan@example.com"}
}

func TestCheckEventThresholds_NoTargetEmailSkipsCheck(t *testing.T) {
	users := &stubUserStore{}
	events := &stubEventStore{}
	evaluator := newEvaluator(users, events, time.Now())

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 0, report.Alerts)
	assert.Empty(t, report.OverdueEvents)
	assert.NotNil(t, report.OverdueEvents)
	assert.Zero(t, users.calls, "user store should not be queried")
	assert.Zero(t, events.calls, "event store should not be queried")
}

func TestCheckEventThresholds_UnknownUserSkipsCheck(t *testing.T) {
	users := &stubUserStore{err: store.ErrNotFound}
	events := &stubEventStore{}
	evaluator := newEvaluator(users, events, time.Now())

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
		TargetUserEmail: "missing@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 0, report.Alerts)
	assert.Zero(t, events.calls, "event store should not be queried")
}

func TestCheckEventThresholds_OverdueEvent(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()
	users := &stubUserStore{user: user}
	events := &stubEventStore{events: []types.LoggableEvent{
		{
			UserID:                 user.ID,
			Name:                   "Exercise",
			WarningThresholdInDays: 7,
			Timestamps:             []time.Time{now.AddDate(0, 0, -10)},
			Labels: []types.EventLabel{
				{Name: "health"},
				{Name: "routine"},
			},
		},
	}}
	evaluator := newEvaluator(users, events, now)

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
		TargetUserEmail: user.Email,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Alerts)
	require.Len(t, report.OverdueEvents, 1)

	overdue := report.OverdueEvents[0]
	assert.Equal(t, "Exercise", overdue.Name)
	assert.Equal(t, 10, overdue.DaysSince)
	assert.Equal(t, 7, overdue.Threshold)
	assert.Equal(t, []string{"health", "routine"}, overdue.Labels)
}

func TestCheckEventThresholds_BelowThresholdNotOverdue(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()
	users := &stubUserStore{user: user}
	events := &stubEventStore{events: []types.LoggableEvent{
		{
			Name:                   "Water plants",
			WarningThresholdInDays: 7,
			Timestamps:             []time.Time{now.AddDate(0, 0, -3)},
		},
	}}
	evaluator := newEvaluator(users, events, now)

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
		TargetUserEmail: user.Email,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 0, report.Alerts)
	assert.Empty(t, report.OverdueEvents)
}

func TestCheckEventThresholds_ZeroThresholdNeverOverdue(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()
	users := &stubUserStore{user: user}
	events := &stubEventStore{events: []types.LoggableEvent{
		{
			Name:       "Journal",
			Timestamps: []time.Time{now.AddDate(0, 0, -365)},
		},
	}}
	evaluator := newEvaluator(users, events, now)

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
		TargetUserEmail: user.Email,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 0, report.Alerts)
}

func TestCheckEventThresholds_NoTimestampsExcludedFromChecked(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()
	users := &stubUserStore{user: user}
	events := &stubEventStore{events: []types.LoggableEvent{
		{Name: "Never logged", WarningThresholdInDays: 1},
		{
			Name:                   "Logged",
			WarningThresholdInDays: 1,
			Timestamps:             []time.Time{now.AddDate(0, 0, -2)},
		},
	}}
	evaluator := newEvaluator(users, events, now)

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
		TargetUserEmail: user.Email,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Alerts)
	require.Len(t, report.OverdueEvents, 1)
	assert.Equal(t, "Logged", report.OverdueEvents[0].Name)
}

func TestCheckEventThresholds_UsesMostRecentTimestampRegardlessOfOrder(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()

	// Same instants in three different orders. The most recent one is only
	// 2 days old, so an 8-day threshold must never fire.
	instants := []time.Time{
		now.AddDate(0, 0, -30),
		now.AddDate(0, 0, -2),
		now.AddDate(0, 0, -15),
	}
	orders := [][]time.Time{
		{instants[0], instants[1], instants[2]},
		{instants[1], instants[2], instants[0]},
		{instants[2], instants[0], instants[1]},
	}

	var reports []types.ThresholdReport
	for _, order := range orders {
		users := &stubUserStore{user: user}
		events := &stubEventStore{events: []types.LoggableEvent{
			{Name: "Call mom", WarningThresholdInDays: 8, Timestamps: order},
		}}
		evaluator := newEvaluator(users, events, now)

		report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
			TargetUserEmail: user.Email,
		})
		require.NoError(t, err)
		reports = append(reports, report)
	}

	for _, report := range reports {
		assert.Equal(t, 1, report.Checked)
		assert.Equal(t, 0, report.Alerts)
		assert.Equal(t, reports[0], report)
	}
}

func TestCheckEventThresholds_PreservesEventOrder(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()

	names := []string{"Dentist", "Exercise", "Haircut", "Oil change", "Water plants"}
	overdue := make([]types.LoggableEvent, 0, len(names))
	for _, name := range names {
		overdue = append(overdue, types.LoggableEvent{
			Name:                   name,
			WarningThresholdInDays: 5,
			Timestamps:             []time.Time{now.AddDate(0, 0, -9)},
		})
	}

	users := &stubUserStore{user: user}
	events := &stubEventStore{events: overdue}
	evaluator := newEvaluator(users, events, now)

	report, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
		TargetUserEmail: user.Email,
	})

	require.NoError(t, err)
	require.Len(t, report.OverdueEvents, len(names))
	for i, name := range names {
		assert.Equal(t, name, report.OverdueEvents[i].Name)
	}
}

func TestCheckEventThresholds_StoreErrorsPropagate(t *testing.T) {
	user := testUser()
	listErr := errors.New("connection reset")

	t.Run("user lookup fails", func(t *testing.T) {
		users := &stubUserStore{err: listErr}
		evaluator := newEvaluator(users, &stubEventStore{}, time.Now())

		_, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
			TargetUserEmail: user.Email,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, listErr)
	})

	t.Run("event list fails", func(t *testing.T) {
		users := &stubUserStore{user: user}
		events := &stubEventStore{err: listErr}
		evaluator := newEvaluator(users, events, time.Now())

		_, err := evaluator.CheckEventThresholds(context.Background(), CheckConfig{
			TargetUserEmail: user.Email,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, listErr)
	})
}

func TestCheckEventThresholds_Idempotent(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	user := testUser()
	users := &stubUserStore{user: user}
	events := &stubEventStore{events: []types.LoggableEvent{
		{
			Name:                   "Exercise",
			WarningThresholdInDays: 7,
			Timestamps:             []time.Time{now.AddDate(0, 0, -10)},
		},
	}}
	evaluator := newEvaluator(users, events, now)
	cfg := CheckConfig{TargetUserEmail: user.Email}

	first, err := evaluator.CheckEventThresholds(context.Background(), cfg)
	require.NoError(t, err)
	second, err := evaluator.CheckEventThresholds(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "same instant",
			from: time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "same date different hours",
			from: time.Date(2026, 8, 23, 1, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 23, 23, 59, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "across midnight under 24 hours",
			from: time.Date(2026, 8, 22, 23, 30, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 23, 0, 30, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "exactly ten days",
			from: time.Date(2026, 8, 13, 9, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
			want: 10,
		},
		{
			name: "across a month boundary",
			from: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 2, 6, 0, 0, 0, time.UTC),
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daysBetween(tt.from, tt.to))
		})
	}
}
