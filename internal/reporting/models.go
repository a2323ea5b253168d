package reporting

import "autodialer/internal/calls"

// Filter narrows the call history a report is computed over.
// The zero value selects every finalized call.
type Filter struct {
	Mode calls.Mode `json:"mode,omitempty"`
}

// CallStats is the headline summary of finalized calls.
// All fields are zero for an empty history.
type CallStats struct {
	TotalCalls    int `json:"total_calls"`
	AnsweredCalls int `json:"answered_calls"`

	// SuccessRate is answered/total as a percentage (0..100).
	SuccessRate float64 `json:"success_rate"`

	// AverageDuration is the mean wall-clock duration in seconds.
	AverageDuration float64 `json:"average_duration"`
}

// HourBucket counts calls that started within one clock hour ("15:00").
type HourBucket struct {
	Hour  string `json:"hour"`
	Calls int    `json:"calls"`
}

type OutcomeCount struct {
	Outcome  calls.Outcome `json:"outcome"`
	Attempts int           `json:"attempts"`
}

// Dashboard bundles the views rendered on the analytics page.
type Dashboard struct {
	Stats        CallStats      `json:"stats"`
	HourlyVolume []HourBucket   `json:"hourly_volume"`
	Outcomes     []OutcomeCount `json:"outcomes"`
}
