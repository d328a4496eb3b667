package reporting

import (
	"context"
	"errors"

	"call-recording/internal/recordings"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository is the read side reporting aggregates over.
// *recordings.PostgresRepo and *recordings.MemoryRepo satisfy it.
type Repository interface {
	ListAll(ctx context.Context) ([]recordings.Recording, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Dashboard aggregates recordings inside rng. success_rate is a percentage of
// completed recordings; average_duration only counts rows with a duration.
func (s *Service) Dashboard(ctx context.Context, rng TimeRange) (Dashboard, error) {
	if !rng.valid() {
		return Dashboard{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return Dashboard{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		out       Dashboard
		withTimed int
	)
	for _, r := range rows {
		if !rng.contains(r.Date) {
			continue
		}
		out.TotalRecordings++
		if r.Status == recordings.StatusCompleted {
			out.CompletedRecordings++
		}
		if r.Duration != nil {
			out.TotalDuration += *r.Duration
			withTimed++
		}
	}
	if out.TotalRecordings > 0 {
		out.SuccessRate = float64(out.CompletedRecordings) / float64(out.TotalRecordings) * 100
	}
	if withTimed > 0 {
		out.AverageDuration = float64(out.TotalDuration) / float64(withTimed)
	}
	return out, nil
}
