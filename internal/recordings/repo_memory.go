package recordings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"call-recording/pkg/utils"
)

// MemoryRepo is an in-memory Repository for tests and local runs.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []Recording
	clock  func() time.Time
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{clock: time.Now} }

func (r *MemoryRepo) Create(ctx context.Context, rec Recording) (Recording, error) {
	if rec.Status == "" {
		return Recording{}, errors.New("recordings: status required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	if rec.Date.IsZero() {
		rec.Date = r.clock().UTC()
	}
	r.rows = append(r.rows, rec)
	return rec, nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recording, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *MemoryRepo) Search(ctx context.Context, substring string, page, limit int) ([]Recording, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]Recording, 0, len(r.rows))
	for _, rec := range r.rows {
		caller := ""
		if rec.CallerID != nil {
			caller = *rec.CallerID
		}
		if strings.Contains(caller, substring) {
			matched = append(matched, rec)
		}
	}
	return utils.PageSlice(matched, page, limit), len(matched), nil
}
