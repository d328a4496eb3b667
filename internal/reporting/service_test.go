package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"call-recording/internal/recordings"
)

type staticRepo struct {
	rows []recordings.Recording
	err  error
}

func (r staticRepo) ListAll(ctx context.Context) ([]recordings.Recording, error) { return r.rows, r.err }

func dur(i int) *int { return &i }

func TestDashboard_Aggregates(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := staticRepo{rows: []recordings.Recording{
		{ID: 1, Status: "completed", Duration: dur(30), Date: now},
		{ID: 2, Status: "completed", Duration: dur(90), Date: now},
		{ID: 3, Status: "failed", Date: now},
		{ID: 4, Status: "completed", Duration: dur(0), Date: now},
	}}

	out, err := NewService(repo).Dashboard(context.Background(), TimeRange{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalRecordings != 4 || out.CompletedRecordings != 3 {
		t.Fatalf("unexpected counts %+v", out)
	}
	if out.TotalDuration != 120 {
		t.Fatalf("expected total duration 120, got %d", out.TotalDuration)
	}
	if out.SuccessRate != 75 {
		t.Fatalf("expected success rate 75, got %v", out.SuccessRate)
	}
	if out.AverageDuration != 40 {
		t.Fatalf("expected average 40, got %v", out.AverageDuration)
	}
}

func TestDashboard_Empty(t *testing.T) {
	out, err := NewService(staticRepo{}).Dashboard(context.Background(), TimeRange{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != (Dashboard{}) {
		t.Fatalf("expected zero dashboard, got %+v", out)
	}
}

func TestDashboard_NoDurations(t *testing.T) {
	repo := staticRepo{rows: []recordings.Recording{{Status: "completed"}, {Status: "recording"}}}
	out, _ := NewService(repo).Dashboard(context.Background(), TimeRange{})
	if out.AverageDuration != 0 || out.TotalDuration != 0 || out.SuccessRate != 50 {
		t.Fatalf("unexpected dashboard %+v", out)
	}
}

func TestDashboard_TimeRange(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := staticRepo{rows: []recordings.Recording{
		{Status: "completed", Duration: dur(10), Date: now.Add(-2 * time.Hour)},
		{Status: "completed", Duration: dur(20), Date: now},
	}}
	svc := NewService(repo)

	out, err := svc.Dashboard(context.Background(), TimeRange{From: now.Add(-time.Hour)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalRecordings != 1 || out.TotalDuration != 20 {
		t.Fatalf("unexpected dashboard %+v", out)
	}

	if _, err := svc.Dashboard(context.Background(), TimeRange{From: now, To: now}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestDashboard_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	if _, err := NewService(staticRepo{err: boom}).Dashboard(context.Background(), TimeRange{}); !errors.Is(err, boom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
