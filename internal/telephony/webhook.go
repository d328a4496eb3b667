package telephony

import (
	"net/http"
	"strings"
)

// Vonage webhook payloads. Only the fields the call lifecycle uses are bound.

type answerPayload struct {
	UUID string `json:"uuid" form:"uuid"`
	From string `json:"from" form:"from"`
	To   string `json:"to" form:"to"`
}

type callEventPayload struct {
	UUID   string `json:"uuid" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type recordingEventPayload struct {
	UUID   string `json:"uuid" binding:"required"`
	Status string `json:"status" binding:"required"`
	URL    string `json:"url" binding:"omitempty,url"`

	// RecordingURL is the field name Vonage uses on record callbacks.
	RecordingURL string `json:"recording_url" binding:"omitempty,url"`
}

func (p recordingEventPayload) recordingURL() string {
	if p.URL != "" {
		return p.URL
	}
	return p.RecordingURL
}

const recordingEventPath = "/api/v1/calls/recordings"

// recordingEventURL resolves the absolute callback URL for record actions.
// A configured public base wins; otherwise it is derived from the request.
func recordingEventURL(publicBaseURL string, r *http.Request) string {
	if publicBaseURL != "" {
		return strings.TrimRight(publicBaseURL, "/") + recordingEventPath
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host + recordingEventPath
}
