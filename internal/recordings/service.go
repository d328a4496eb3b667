package recordings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"call-recording/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("recordings: invalid argument")
	ErrArchive         = errors.New("recordings: archive failed")
)

// Archiver uploads a local file and returns its public URL.
type Archiver interface {
	Upload(ctx context.Context, localPath, bucket, key string) (string, error)
}

type UploadRecorder interface {
	RecordUpload(ok bool)
}

type ServiceOptions struct {
	Bucket  string
	TempDir string
	Metrics UploadRecorder
}

type Service struct {
	repo     Repository
	archiver Archiver
	opts     ServiceOptions
}

func NewService(repo Repository, archiver Archiver, opts ServiceOptions) *Service {
	return &Service{repo: repo, archiver: archiver, opts: opts}
}

// CreateFromUpload spools audio to a temp file, archives it under a random
// key, and stores a completed Recording row. The temp file is always removed.
func (s *Service) CreateFromUpload(ctx context.Context, in Upload, audio io.Reader) (Recording, error) {
	if audio == nil {
		return Recording{}, fmt.Errorf("%w: audio is required", ErrInvalidArgument)
	}
	if in.Duration != nil && *in.Duration < 0 {
		return Recording{}, fmt.Errorf("%w: duration must be non-negative", ErrInvalidArgument)
	}
	if s.archiver == nil {
		return Recording{}, errors.New("recordings: archiver not configured")
	}

	rec, err := s.createFromUpload(ctx, in, audio)
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordUpload(err == nil)
	}
	return rec, err
}

func (s *Service) createFromUpload(ctx context.Context, in Upload, audio io.Reader) (Recording, error) {
	log := logger.From(ctx)

	f, err := os.CreateTemp(s.opts.TempDir, "upload-*")
	if err != nil {
		return Recording{}, fmt.Errorf("recordings: spool: %w", err)
	}
	defer os.Remove(f.Name())

	_, err = io.Copy(f, audio)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Recording{}, fmt.Errorf("recordings: spool: %w", err)
	}

	key := uuid.NewString() + uploadExt(in.Filename)
	url, err := s.archiver.Upload(ctx, f.Name(), s.opts.Bucket, key)
	if err != nil {
		return Recording{}, fmt.Errorf("%w: %w", ErrArchive, err)
	}

	rec := Recording{
		Duration:     in.Duration,
		Status:       StatusCompleted,
		RecordingURL: url,
	}
	if in.CallerID != "" {
		caller := in.CallerID
		rec.CallerID = &caller
	}
	if in.UserID != 0 {
		id := in.UserID
		rec.UserID = &id
	}
	if in.Role != "" {
		role := in.Role
		rec.UserRole = &role
	}

	rec, err = s.repo.Create(ctx, rec)
	if err != nil {
		return Recording{}, err
	}
	log.Info("recording uploaded", "recording_id", rec.ID, "key", key, "url", url)
	return rec, nil
}

// List returns one page of recordings whose caller id contains search.
func (s *Service) List(ctx context.Context, search string, page, limit int) (Page, error) {
	rows, total, err := s.repo.Search(ctx, search, page, limit)
	if err != nil {
		return Page{}, err
	}
	if rows == nil {
		rows = []Recording{}
	}
	return Page{Recordings: rows, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) All(ctx context.Context) ([]Recording, error) {
	return s.repo.ListAll(ctx)
}

func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".wav", ".mp3", ".ogg", ".m4a", ".webm", ".flac":
		return ext
	default:
		return ".wav"
	}
}
