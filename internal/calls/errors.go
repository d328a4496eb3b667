package calls

import (
	"errors"
	"fmt"
)

var (
	ErrIngestFailure = errors.New("calls: ingest failed")

	ErrFetch       = errors.New("calls: recording fetch failed")
	ErrSpool       = errors.New("calls: recording spool failed")
	ErrRecognition = errors.New("calls: speech recognition failed")
	ErrTranslation = errors.New("calls: translation failed")
	ErrStore       = errors.New("calls: state store failed")
	ErrArchive     = errors.New("calls: archive upload failed")

	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// Stage names one step of the ingest pipeline.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageSpool     Stage = "spool"
	StageRecognize Stage = "recognize"
	StageTranslate Stage = "translate"
	StageStore     Stage = "store"
	StageArchive   Stage = "archive"
)

func (s Stage) sentinel() error {
	switch s {
	case StageFetch:
		return ErrFetch
	case StageSpool:
		return ErrSpool
	case StageRecognize:
		return ErrRecognition
	case StageTranslate:
		return ErrTranslation
	case StageStore:
		return ErrStore
	case StageArchive:
		return ErrArchive
	default:
		return nil
	}
}

// IngestError is returned by Pipeline.Run. It matches ErrIngestFailure, the
// stage sentinel, and the underlying cause with errors.Is.
type IngestError struct {
	Stage Stage
	UUID  string
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s for call %s: %v", e.Stage, e.UUID, e.Err)
}

func (e *IngestError) Unwrap() []error {
	out := []error{ErrIngestFailure}
	if s := e.Stage.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func ingestErr(stage Stage, uuid string, err error) error {
	return &IngestError{Stage: stage, UUID: uuid, Err: err}
}
