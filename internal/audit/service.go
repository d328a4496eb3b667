package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events. Append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
	ListByCall(ctx context.Context, callUUID string) ([]Event, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var (
	ErrInvalidEvent      = errors.New("audit: invalid event")
	errRepoNotConfigured = errors.New("audit: repository not configured")
)

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errRepoNotConfigured
	}
	if e.CallUUID == "" || e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record appends an event with metadata encoded as a JSON object.
func (s *Service) Record(ctx context.Context, callUUID string, typ EventType, message string, metadata map[string]any) error {
	e := Event{CallUUID: callUUID, Type: typ, Message: message}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		e.Metadata = string(raw)
	}
	return s.Append(ctx, e)
}

func (s *Service) History(ctx context.Context, callUUID string) ([]Event, error) {
	if s.repo == nil {
		return nil, errRepoNotConfigured
	}
	if callUUID == "" {
		return nil, ErrInvalidEvent
	}
	return s.repo.ListByCall(ctx, callUUID)
}
