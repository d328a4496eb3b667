package calls

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"call-recording/pkg/utils"
)

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]CallState
	clock  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string]CallState{}, clock: time.Now}
}

func (s *MemoryStore) Exists(ctx context.Context, uuid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[uuid]
	return ok, nil
}

func (s *MemoryStore) Create(ctx context.Context, uuid string, status ProviderStatus) (bool, error) {
	if uuid == "" {
		return false, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[uuid]; ok {
		return false, nil
	}
	s.nextID++
	s.rows[uuid] = CallState{
		ID:        s.nextID,
		UUID:      uuid,
		Phase:     PhaseActive,
		Status:    status,
		CreatedAt: s.clock().UTC(),
	}
	return true, nil
}

// Put stores a fully populated row, replacing any existing one. Test helper.
func (s *MemoryStore) Put(cs CallState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs.ID == 0 {
		s.nextID++
		cs.ID = s.nextID
	}
	if cs.Phase == "" {
		cs.Phase = PhaseActive
	}
	s.rows[cs.UUID] = cs
}

func (s *MemoryStore) Get(ctx context.Context, uuid string) (CallState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.rows[uuid]
	return cs, ok, nil
}

func (s *MemoryStore) UpdateResults(ctx context.Context, uuid string, u ResultUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.rows[uuid]
	if !ok {
		return false, nil
	}
	if u.Transcript != nil {
		v := *u.Transcript
		cs.Transcript = &v
	}
	if u.Translation != nil {
		v := *u.Translation
		cs.Translation = &v
	}
	s.rows[uuid] = cs
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, uuid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[uuid]; !ok {
		return false, nil
	}
	delete(s.rows, uuid)
	return true, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]CallState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(""), nil
}

func (s *MemoryStore) Search(ctx context.Context, substring string, page, limit int) ([]CallState, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedLocked(substring)
	return utils.PageSlice(all, page, limit), len(all), nil
}

func (s *MemoryStore) sortedLocked(substring string) []CallState {
	out := make([]CallState, 0, len(s.rows))
	for _, cs := range s.rows {
		caller := ""
		if cs.CallerID != nil {
			caller = *cs.CallerID
		}
		if substring != "" && !strings.Contains(caller, substring) {
			continue
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
