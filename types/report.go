package types

// ThresholdReport summarizes one run of the overdue-event check.
//
// The JSON field names (checked, alerts, overdueEvents and the entry fields
// below) are a contract with downstream alert consumers and must not change.
type ThresholdReport struct {
	// Checked is the number of events that were evaluated against their
	// threshold. Events with no recorded timestamps are skipped and not
	// counted here.
	Checked int `json:"checked"`

	// Alerts is the number of events found overdue, always equal to
	// len(OverdueEvents).
	Alerts int `json:"alerts"`

	// OverdueEvents lists the overdue events in the order they were
	// evaluated. No re-sorting by severity is applied.
	OverdueEvents []OverdueEvent `json:"overdueEvents"`
}

// OverdueEvent is one overdue entry in a ThresholdReport.
type OverdueEvent struct {
	// Name is the display name of the overdue event.
	Name string `json:"name"`

	// DaysSince is the number of whole calendar days since the event was
	// last logged.
	DaysSince int `json:"daysSince"`

	// Threshold is the event's configured warning threshold in days.
	Threshold int `json:"threshold"`

	// Labels holds the display names of the labels attached to the event,
	// in store order. Empty but non-nil when the event has no labels.
	Labels []string `json:"labels"`
}
