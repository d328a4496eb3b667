package calls

import (
	"context"
	"errors"
	"log/slog"

	"call-recording/internal/audit"
	"call-recording/pkg/logger"
)

// Ingester runs the completion work for a recording. *Pipeline implements it.
type Ingester interface {
	Run(ctx context.Context, uuid, recordingURL string) (Result, error)
}

// Claimer guards the completion path across processes. ok=false means
// another worker already holds the claim for uuid.
type Claimer interface {
	Claim(ctx context.Context, uuid string) (release func(), ok bool, err error)
}

type AuditLogger interface {
	Record(ctx context.Context, callUUID string, typ audit.EventType, message string, metadata map[string]any) error
}

type EventRecorder interface {
	RecordWebhookEvent(kind, status, action string)
}

type CoordinatorOptions struct {
	// Claimer is optional. Without it two concurrent completions for the same
	// call may both run the ingester; only one of them clears the row.
	Claimer Claimer
	Audit   AuditLogger
	Metrics EventRecorder
}

const (
	kindAnswer    = "answer"
	kindCall      = "call"
	kindRecording = "recording"
)

// Coordinator applies provider webhook events to the tracking rows.
// It holds no in-process locks; ordering is resolved by the store.
type Coordinator struct {
	store    Store
	ingester Ingester
	opts     CoordinatorOptions
}

func NewCoordinator(store Store, ingester Ingester, opts CoordinatorOptions) (*Coordinator, error) {
	if store == nil || ingester == nil {
		return nil, errors.New("calls: coordinator dependencies are required")
	}
	return &Coordinator{store: store, ingester: ingester, opts: opts}, nil
}

// OnCallAnswered starts tracking uuid. Repeated answers are no-ops.
func (c *Coordinator) OnCallAnswered(ctx context.Context, uuid string) (Outcome, error) {
	if uuid == "" {
		return Outcome{}, ErrInvalidArgument
	}
	created, err := c.store.Create(ctx, uuid, StatusRecording)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{UUID: uuid, Phase: PhaseActive, Action: ActionCreated}
	if !created {
		out.Action, out.Reason = ActionIgnored, ReasonAlreadyTracked
	} else {
		c.audit(ctx, uuid, audit.EventTypeCallAnswered, "call answered", nil)
	}
	c.finish(ctx, kindAnswer, "", out)
	return out, nil
}

// OnCallEvent handles a call status callback. Only completed is acted on:
// it clears the tracking row.
func (c *Coordinator) OnCallEvent(ctx context.Context, uuid string, status ProviderStatus) (Outcome, error) {
	if uuid == "" {
		return Outcome{}, ErrInvalidArgument
	}
	out := Outcome{UUID: uuid}

	exists, err := c.store.Exists(ctx, uuid)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		out.Action, out.Reason = ActionIgnored, ReasonNotFound
		c.finish(ctx, kindCall, status, out)
		return out, nil
	}

	if status != StatusCompleted {
		out.Phase, out.Action, out.Reason = PhaseActive, ActionIgnored, ReasonStatusIgnored
		c.finish(ctx, kindCall, status, out)
		return out, nil
	}

	out, err = c.clear(ctx, uuid, ReasonCallCompleted)
	if err != nil {
		return Outcome{}, err
	}
	if out.Action == ActionCleared {
		c.audit(ctx, uuid, audit.EventTypeCallCleared, "call completed", nil)
	}
	c.finish(ctx, kindCall, status, out)
	return out, nil
}

// OnRecordingEvent handles a recording callback. completed runs the ingester
// and then clears the row; failed clears the row without ingesting. An
// ingester error propagates and leaves the row in place.
func (c *Coordinator) OnRecordingEvent(ctx context.Context, uuid, recordingURL string, status ProviderStatus) (Outcome, error) {
	if uuid == "" {
		return Outcome{}, ErrInvalidArgument
	}
	log := logger.From(ctx).With("call_uuid", uuid)
	out := Outcome{UUID: uuid}

	exists, err := c.store.Exists(ctx, uuid)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		out.Action, out.Reason = ActionIgnored, ReasonNotFound
		c.finish(ctx, kindRecording, status, out)
		return out, nil
	}

	switch status {
	case StatusRecording:
		out.Phase, out.Action, out.Reason = PhaseActive, ActionIgnored, ReasonRecordingStarted
		c.finish(ctx, kindRecording, status, out)
		return out, nil

	case StatusFailed:
		out, err = c.clear(ctx, uuid, ReasonRecordingFailed)
		if err != nil {
			return Outcome{}, err
		}
		if out.Action == ActionCleared {
			c.audit(ctx, uuid, audit.EventTypeRecordingFailed, "recording failed", map[string]any{"recording_url": recordingURL})
		}
		c.finish(ctx, kindRecording, status, out)
		return out, nil

	case StatusCompleted:
		// handled below

	default:
		out.Phase, out.Action, out.Reason = PhaseActive, ActionIgnored, ReasonStatusIgnored
		c.finish(ctx, kindRecording, status, out)
		return out, nil
	}

	if c.opts.Claimer != nil {
		release, ok, err := c.opts.Claimer.Claim(ctx, uuid)
		switch {
		case err != nil:
			log.Warn("completion claim unavailable, continuing without it", "err", err)
		case !ok:
			out.Phase, out.Action, out.Reason = PhaseActive, ActionIgnored, ReasonConflictIgnored
			c.finish(ctx, kindRecording, status, out)
			return out, nil
		default:
			defer release()
		}
	}

	res, err := c.ingester.Run(ctx, uuid, recordingURL)
	if err != nil {
		meta := map[string]any{"recording_url": recordingURL, "error": err.Error()}
		var ie *IngestError
		if errors.As(err, &ie) {
			meta["stage"] = string(ie.Stage)
		}
		c.audit(ctx, uuid, audit.EventTypeIngestFailed, "ingest failed", meta)
		c.opts.recordEvent(kindRecording, status, "error")
		return Outcome{UUID: uuid, Phase: PhaseActive}, err
	}

	deleted, err := c.store.Delete(ctx, uuid)
	if err != nil {
		return Outcome{}, err
	}
	if !deleted {
		out.Phase, out.Action, out.Reason = PhaseCleared, ActionIgnored, ReasonConflictIgnored
		c.finish(ctx, kindRecording, status, out)
		return out, nil
	}

	out.Phase, out.Action = PhaseCleared, ActionIngested
	c.audit(ctx, uuid, audit.EventTypeRecordingIngested, "recording ingested", map[string]any{
		"recording_url": recordingURL,
		"archive_url":   res.ArchiveURL,
	})
	c.finish(ctx, kindRecording, status, out)
	return out, nil
}

// ActiveCalls lists rows still being tracked.
func (c *Coordinator) ActiveCalls(ctx context.Context, substring string, page, limit int) ([]CallState, int, error) {
	return c.store.Search(ctx, substring, page, limit)
}

func (c *Coordinator) clear(ctx context.Context, uuid string, reason Reason) (Outcome, error) {
	deleted, err := c.store.Delete(ctx, uuid)
	if err != nil {
		return Outcome{}, err
	}
	if !deleted {
		return Outcome{UUID: uuid, Phase: PhaseCleared, Action: ActionIgnored, Reason: ReasonConflictIgnored}, nil
	}
	return Outcome{UUID: uuid, Phase: PhaseCleared, Action: ActionCleared, Reason: reason}, nil
}

func (c *Coordinator) audit(ctx context.Context, uuid string, typ audit.EventType, msg string, meta map[string]any) {
	if c.opts.Audit == nil {
		return
	}
	if err := c.opts.Audit.Record(ctx, uuid, typ, msg, meta); err != nil {
		logger.From(ctx).Warn("audit append failed", "call_uuid", uuid, "type", typ, "err", err)
	}
}

func (c *Coordinator) finish(ctx context.Context, kind string, status ProviderStatus, out Outcome) {
	logger.From(ctx).Info("call event",
		slog.String("kind", kind),
		slog.String("call_uuid", out.UUID),
		slog.String("status", string(status)),
		slog.String("action", string(out.Action)),
		slog.String("reason", string(out.Reason)),
	)
	c.opts.recordEvent(kind, status, string(out.Action))
}

func (o CoordinatorOptions) recordEvent(kind string, status ProviderStatus, action string) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.RecordWebhookEvent(kind, string(status), action)
}
