package calls

import "time"

// TrackingPhase is the local lifecycle phase of a tracked call. It is never
// set from provider input.
type TrackingPhase string

const (
	PhaseActive  TrackingPhase = "active"
	PhaseCleared TrackingPhase = "cleared"
)

// ProviderStatus is the status string reported by the telephony provider on
// an inbound event. Values other than the constants below are carried as-is.
type ProviderStatus string

const (
	StatusRecording ProviderStatus = "recording"
	StatusCompleted ProviderStatus = "completed"
	StatusFailed    ProviderStatus = "failed"
)

// CallState is the transient tracking row for an in-flight call. At most one
// row exists per UUID and it is deleted once the call reaches a terminal
// outcome.
type CallState struct {
	ID     int64          `json:"id" db:"id"`
	UUID   string         `json:"uuid" db:"uuid"`
	Phase  TrackingPhase  `json:"phase" db:"phase"`
	Status ProviderStatus `json:"status" db:"status"`

	Transcript  *string `json:"transcript,omitempty" db:"transcript"`
	Translation *string `json:"translation,omitempty" db:"translation"`

	CallerID     *string `json:"caller_id,omitempty" db:"caller_id"`
	Duration     *int    `json:"duration,omitempty" db:"duration"`
	RecordingURL *string `json:"recording_url,omitempty" db:"recording_url"`
	UserID       *int64  `json:"user_id,omitempty" db:"user_id"`
	UserRole     *string `json:"user_role,omitempty" db:"user_role"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ResultUpdate carries the fields a writer may change on a tracked row.
// Nil fields are left untouched.
type ResultUpdate struct {
	Transcript  *string
	Translation *string
}

// Action is what a coordinator operation did.
type Action string

const (
	ActionCreated  Action = "created"
	ActionIgnored  Action = "ignored"
	ActionCleared  Action = "cleared"
	ActionIngested Action = "ingested"
)

// Reason qualifies an Action for logs and tests.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonAlreadyTracked   Reason = "already_tracked"
	ReasonNotFound         Reason = "not_found"
	ReasonConflictIgnored  Reason = "conflict_ignored"
	ReasonStatusIgnored    Reason = "status_ignored"
	ReasonRecordingStarted Reason = "recording_started"
	ReasonRecordingFailed  Reason = "recording_failed"
	ReasonCallCompleted    Reason = "call_completed"
)

// Outcome reports the effect of one inbound event.
type Outcome struct {
	UUID   string        `json:"uuid"`
	Phase  TrackingPhase `json:"phase,omitempty"`
	Action Action        `json:"action"`
	Reason Reason        `json:"reason,omitempty"`
}

// Result is what the ingest pipeline produced for one recording.
type Result struct {
	Transcript  string
	Translation string
	ArchiveURL  string
}
