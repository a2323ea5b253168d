package audit

import "time"

// Event is an immutable, append-only activity log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Logging is best-effort; a failed append must not fail the operation it describes.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	// RequestID correlates the event with the HTTP request log line, when known.
	RequestID string `json:"request_id,omitempty"`

	// Message is a short human-readable description for the activity feed.
	Message string `json:"message,omitempty"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventTypeContactsImported  EventType = "contacts_imported"
	EventTypeCampaignStarted   EventType = "campaign_started"
	EventTypeCampaignPaused    EventType = "campaign_paused"
	EventTypeCampaignCompleted EventType = "campaign_completed"
	EventTypeDialerReset       EventType = "dialer_reset"
	EventTypePowerBatchDialed  EventType = "power_batch_dialed"
)
