package audit

import "time"

// Event is an immutable, append-only record of a call lifecycle transition.
// Events are never updated or deleted. Writers treat appends as best-effort.
type Event struct {
	ID       string    `json:"id" db:"id"`
	CallUUID string    `json:"call_uuid" db:"call_uuid"`
	Type     EventType `json:"type" db:"type"`

	// Message is a short human-readable description for ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON with full details (recording url, archive url, stage).
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallAnswered      EventType = "call_answered"
	EventTypeCallCleared       EventType = "call_cleared"
	EventTypeRecordingIngested EventType = "recording_ingested"
	EventTypeRecordingFailed   EventType = "recording_failed"
	EventTypeIngestFailed      EventType = "ingest_failed"
)
