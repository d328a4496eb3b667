package calls

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"call-recording/pkg/logger"
)

// Collaborator contracts used by the pipeline. Implementations live in
// internal/media, internal/speech/deepgram, internal/translate and
// internal/archive.
type (
	Fetcher interface {
		Get(ctx context.Context, rawURL string) ([]byte, error)
	}
	Recognizer interface {
		Recognize(ctx context.Context, audio io.Reader) (string, error)
	}
	Translator interface {
		Translate(ctx context.Context, text, targetLang string) (string, error)
	}
	Archiver interface {
		Upload(ctx context.Context, localPath, bucket, key string) (string, error)
	}
)

// IngestRecorder observes pipeline runs. pkg/metrics implements it.
type IngestRecorder interface {
	RecordIngest(stage string, d time.Duration)
}

type PipelineOptions struct {
	Bucket       string
	TargetLang   string
	TempDir      string
	ObjectPrefix string
	Metrics      IngestRecorder
}

const (
	defaultTargetLang = "es"
	defaultAudioExt   = ".wav"
)

// Pipeline turns a finished recording into a transcript and translation on
// the tracking row, and archives the audio.
type Pipeline struct {
	store      Store
	fetcher    Fetcher
	recognizer Recognizer
	translator Translator
	archiver   Archiver
	opts       PipelineOptions
	now        func() time.Time
}

func NewPipeline(store Store, f Fetcher, r Recognizer, t Translator, a Archiver, opts PipelineOptions) (*Pipeline, error) {
	if store == nil || f == nil || r == nil || t == nil || a == nil {
		return nil, errors.New("calls: pipeline dependencies are required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("calls: pipeline bucket is required")
	}
	if opts.TargetLang == "" {
		opts.TargetLang = defaultTargetLang
	}
	return &Pipeline{
		store:      store,
		fetcher:    f,
		recognizer: r,
		translator: t,
		archiver:   a,
		opts:       opts,
		now:        time.Now,
	}, nil
}

// Run executes fetch, spool, recognize, translate, store, archive in order.
// The spooled temp file is removed on every path. A missing tracking row at
// the store step is a silent no-op.
func (p *Pipeline) Run(ctx context.Context, uuid, recordingURL string) (res Result, err error) {
	log := logger.From(ctx).With("call_uuid", uuid)
	start := p.now()
	stage := StageFetch
	defer func() {
		if p.opts.Metrics == nil {
			return
		}
		label := "ok"
		if err != nil {
			label = string(stage)
		}
		p.opts.Metrics.RecordIngest(label, p.now().Sub(start))
	}()

	if uuid == "" || recordingURL == "" {
		return Result{}, ingestErr(stage, uuid, ErrInvalidArgument)
	}

	audio, err := p.fetcher.Get(ctx, recordingURL)
	if err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}
	log.Debug("recording fetched", "bytes", len(audio))

	stage = StageSpool
	ext := audioExt(recordingURL)
	tmp, err := os.CreateTemp(p.opts.TempDir, "recording-*"+ext)
	if err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}
	defer func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn("temp file cleanup failed", "path", tmp.Name(), "err", rmErr)
		}
	}()
	if _, err := tmp.Write(audio); err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}

	stage = StageRecognize
	transcript, err := p.recognizer.Recognize(ctx, tmp)
	if err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}

	stage = StageTranslate
	translation, err := p.translator.Translate(ctx, transcript, p.opts.TargetLang)
	if err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}

	stage = StageStore
	updated, err := p.store.UpdateResults(ctx, uuid, ResultUpdate{
		Transcript:  &transcript,
		Translation: &translation,
	})
	if err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}
	if !updated {
		log.Info("tracking row gone before results were stored")
	}

	stage = StageArchive
	key := p.opts.ObjectPrefix + uuid + ext
	archiveURL, err := p.archiver.Upload(ctx, tmp.Name(), p.opts.Bucket, key)
	if err != nil {
		return Result{}, ingestErr(stage, uuid, err)
	}
	log.Info("recording archived", "archive_url", archiveURL, "key", key)

	return Result{Transcript: transcript, Translation: translation, ArchiveURL: archiveURL}, nil
}

// audioExt takes the extension from the recording URL path. Provider download
// URLs usually have none, in which case .wav is used.
func audioExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultAudioExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > 5 {
		return defaultAudioExt
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultAudioExt
		}
	}
	return ext
}

