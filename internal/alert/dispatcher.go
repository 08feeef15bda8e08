// Package alert turns threshold reports into notifications. The evaluator
// only produces reports; everything about delivery lives here.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nathanchica/life-event-logger/config"
	"github.com/nathanchica/life-event-logger/types"
	"go.uber.org/zap"
)

const defaultHTTPTimeout = 10 * time.Second

// Publisher is the slice of the message queue the dispatcher needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Dispatcher delivers a ThresholdReport to the configured sinks: a webhook
// (human-readable summary) and/or a broker channel (raw report JSON).
// Unconfigured sinks are skipped.
type Dispatcher struct {
	webhookURL string
	channel    string
	publisher  Publisher
	client     *http.Client
	logger     *zap.Logger
}

func NewDispatcher(cfg config.AlertsConfig, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		publisher:  publisher,
		client:     &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logger,
	}
}

// Dispatch sends the report to every configured sink. Reports with no
// overdue events are not dispatched.
func (d *Dispatcher) Dispatch(ctx context.Context, report types.ThresholdReport) error {
	if report.Alerts == 0 {
		d.logger.Info("no overdue events, nothing to dispatch",
			zap.Int("checked", report.Checked))
		return nil
	}

	var errs []error
	if d.webhookURL != "" {
		if err := d.postWebhook(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("webhook: %w", err))
		}
	}
	if d.publisher != nil && d.channel != "" {
		if err := d.publishReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("mq: %w", err))
		}
	}
	if d.webhookURL == "" && (d.publisher == nil || d.channel == "") {
		d.logger.Info("no alert sinks configured, dropping report",
			zap.Int("alerts", report.Alerts))
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) postWebhook(ctx context.Context, report types.ThresholdReport) error {
	payload, err := json.Marshal(map[string]string{"text": FormatSummary(report)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	d.logger.Info("alert summary posted to webhook", zap.Int("alerts", report.Alerts))
	return nil
}

func (d *Dispatcher) publishReport(ctx context.Context, report types.ThresholdReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	id, err := d.publisher.Publish(ctx, d.channel, data, map[string]string{
		"source": "threshold-check",
	})
	if err != nil {
		return err
	}
	d.logger.Info("alert report published",
		zap.String("channel", d.channel),
		zap.String("message_id", id))
	return nil
}

// FormatSummary renders a report as the human-readable text sent to the
// webhook, one line per overdue event, in report order.
func FormatSummary(report types.ThresholdReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d events are overdue:\n", report.Alerts, report.Checked)
	for _, entry := range report.OverdueEvents {
		fmt.Fprintf(&b, "- %s: last logged %d days ago (threshold %d)", entry.Name, entry.DaysSince, entry.Threshold)
		if len(entry.Labels) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(entry.Labels, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
