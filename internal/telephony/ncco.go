package telephony

import (
	"errors"
	"strings"
)

// NCCO is a Vonage Call Control Object: an ordered list of actions the
// provider executes for an answered call.
type NCCO []any

type talkAction struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

type recordAction struct {
	Action    string   `json:"action"`
	EventURL  []string `json:"eventUrl"`
	BeepStart bool     `json:"beepStart"`
}

type connectAction struct {
	Action   string            `json:"action"`
	Endpoint []connectEndpoint `json:"endpoint"`
}

type connectEndpoint struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// BuildAnswerNCCO plays the recording disclosure, starts recording with
// callbacks to recordingEventURL, and bridges the caller to bridgeNumber.
func BuildAnswerNCCO(recordingEventURL, bridgeNumber, disclosure string) (NCCO, error) {
	if strings.TrimSpace(recordingEventURL) == "" {
		return nil, errors.New("telephony: recording event url required")
	}
	if strings.TrimSpace(bridgeNumber) == "" {
		return nil, errors.New("telephony: bridge number required")
	}
	return NCCO{
		talkAction{Action: "talk", Text: disclosure},
		recordAction{Action: "record", EventURL: []string{recordingEventURL}, BeepStart: false},
		connectAction{Action: "connect", Endpoint: []connectEndpoint{{Type: "phone", Number: bridgeNumber}}},
	}, nil
}
