package reporting

import "time"

// TimeRange optionally narrows aggregation to [From, To). Zero bounds are open.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r TimeRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

func (r TimeRange) valid() bool {
	return r.From.IsZero() || r.To.IsZero() || r.To.After(r.From)
}

// Dashboard summarizes all stored recordings.
type Dashboard struct {
	TotalRecordings     int     `json:"total_recordings"`
	TotalDuration       int     `json:"total_duration"`
	CompletedRecordings int     `json:"completed_recordings"`
	SuccessRate         float64 `json:"success_rate"`
	AverageDuration     float64 `json:"average_duration"`
}
