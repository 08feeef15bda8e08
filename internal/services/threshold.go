package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/nathanchica/life-event-logger/types"
	"go.uber.org/zap"
)

// ThresholdUserStore is the slice of user persistence the evaluator needs.
type ThresholdUserStore interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// ThresholdEventStore is the slice of event persistence the evaluator needs.
type ThresholdEventStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]types.LoggableEvent, error)
}

// CheckConfig carries the evaluator's configuration explicitly, so each run
// is a pure function of store state, config, and the clock.
type CheckConfig struct {
	// TargetUserEmail selects whose events are checked. Empty disables the
	// check entirely.
	TargetUserEmail string
}

// ThresholdEvaluator scans a user's events for ones that have gone silent
// longer than their warning threshold. It only produces a report; alert
// delivery is the dispatcher's job.
type ThresholdEvaluator struct {
	users  ThresholdUserStore
	events ThresholdEventStore
	logger *zap.Logger
	now    func() time.Time
}

func NewThresholdEvaluator(users ThresholdUserStore, events ThresholdEventStore, logger *zap.Logger) *ThresholdEvaluator {
	return &ThresholdEvaluator{
		users:  users,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the evaluation clock.
func (e *ThresholdEvaluator) WithClock(now func() time.Time) *ThresholdEvaluator {
	e.now = now
	return e
}

// CheckEventThresholds evaluates the configured user's events against their
// warning thresholds and reports the overdue ones, preserving store
// iteration order.
//
// A missing target email or an unknown user is not an error: the check is
// skipped with an empty (but valid) report, and in the missing-email case
// the store is never touched. Events with no recorded timestamps are
// skipped per-event and excluded from the Checked count. Store failures
// propagate to the caller unrecovered.
func (e *ThresholdEvaluator) CheckEventThresholds(ctx context.Context, cfg CheckConfig) (types.ThresholdReport, error) {
	report := types.ThresholdReport{OverdueEvents: []types.OverdueEvent{}}

	if cfg.TargetUserEmail == "" {
		e.logger.Info("threshold check skipped: no target user email configured")
		return report, nil
	}

	user, err := e.users.GetByEmail(ctx, cfg.TargetUserEmail)
	if errors.Is(err, store.ErrNotFound) {
		e.logger.Info("threshold check skipped: target user not found",
			zap.String("email", cfg.TargetUserEmail))
		return report, nil
	}
	if err != nil {
		return types.ThresholdReport{}, fmt.Errorf("failed to look up target user: %w", err)
	}

	events, err := e.events.ListByUser(ctx, user.ID)
	if err != nil {
		return types.ThresholdReport{}, fmt.Errorf("failed to list events: %w", err)
	}

	now := e.now()
	for _, event := range events {
		latest, ok := event.LatestTimestamp()
		if !ok {
			e.logger.Info("skipping event with no timestamps",
				zap.String("event", event.Name))
			continue
		}
		report.Checked++

		daysSince := daysBetween(latest, now)
		if event.WarningThresholdInDays > 0 && daysSince >= event.WarningThresholdInDays {
			labels := make([]string, 0, len(event.Labels))
			for _, label := range event.Labels {
				labels = append(labels, label.Name)
			}
			report.OverdueEvents = append(report.OverdueEvents, types.OverdueEvent{
				Name:      event.Name,
				DaysSince: daysSince,
				Threshold: event.WarningThresholdInDays,
				Labels:    labels,
			})
			report.Alerts++
		}
	}

	e.logger.Info("threshold check complete",
		zap.String("email", cfg.TargetUserEmail),
		zap.Int("checked", report.Checked),
		zap.Int("alerts", report.Alerts))
	return report, nil
}

// daysBetween counts whole calendar days between two instants. Instants on
// the same calendar date are 0 days apart; instants on different dates are
// at least 1 day apart even when less than 24 hours separate them, so a
// late-night log followed by an early-morning check never reads as "0 days
// since". Dates are taken in UTC.
func daysBetween(from, to time.Time) int {
	fromDate := truncateToDate(from.UTC())
	toDate := truncateToDate(to.UTC())
	return int(toDate.Sub(fromDate).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
