package recordings

import "time"

const StatusCompleted = "completed"

// Recording is a durable, append-only recording row.
type Recording struct {
	ID           int64     `json:"id" db:"id"`
	Date         time.Time `json:"date" db:"created_at"`
	Duration     *int      `json:"duration" db:"duration"`
	CallerID     *string   `json:"caller_id" db:"caller_id"`
	Status       string    `json:"status" db:"status"`
	RecordingURL string    `json:"recording_url,omitempty" db:"recording_url"`
	UserID       *int64    `json:"user_id" db:"user_id"`
	UserRole     *string   `json:"user_role" db:"user_role"`
}

// Upload describes an uploaded recording before it is archived.
type Upload struct {
	Filename string
	CallerID string
	Duration *int

	UserID int64
	Role   string
}

// Page is one window of a recording search.
type Page struct {
	Recordings []Recording `json:"recordings"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}
