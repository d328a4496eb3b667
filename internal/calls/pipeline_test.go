package calls

import (
	"context"
	"errors"
	"os"
	"testing"
)

type pipelineFixture struct {
	store      *MemoryStore
	fetcher    *fakeFetcher
	recognizer *fakeRecognizer
	translator *fakeTranslator
	archiver   *fakeArchiver
	metrics    *fakeMetrics
	tempDir    string
	pipeline   *Pipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		store:      NewMemoryStore(),
		fetcher:    &fakeFetcher{data: []byte("RIFF....WAVE")},
		recognizer: &fakeRecognizer{text: "hello there"},
		translator: &fakeTranslator{},
		archiver:   &fakeArchiver{},
		metrics:    &fakeMetrics{},
		tempDir:    t.TempDir(),
	}
	p, err := NewPipeline(f.store, f.fetcher, f.recognizer, f.translator, f.archiver, PipelineOptions{
		Bucket:  "recordings",
		TempDir: f.tempDir,
		Metrics: f.metrics,
	})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	f.pipeline = p
	return f
}

func (f *pipelineFixture) assertTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temp file removed, found %d entries", len(entries))
	}
}

func TestPipeline_HappyPath(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	_, _ = f.store.Create(ctx, "abc", StatusRecording)

	res, err := f.pipeline.Run(ctx, "abc", "https://api.nexmo.com/v1/files/rec-1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Transcript != "hello there" || res.Translation != "[es] hello there" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if string(f.recognizer.got) != "RIFF....WAVE" {
		t.Fatalf("recognizer did not receive fetched audio: %q", f.recognizer.got)
	}
	if f.archiver.gotBucket != "recordings" || f.archiver.gotKey != "abc.wav" {
		t.Fatalf("unexpected archive target: %s/%s", f.archiver.gotBucket, f.archiver.gotKey)
	}
	if string(f.archiver.fileBytes) != "RIFF....WAVE" {
		t.Fatalf("archiver did not see spooled audio")
	}
	if res.ArchiveURL != "https://recordings.s3.amazonaws.com/abc.wav" {
		t.Fatalf("unexpected archive url: %s", res.ArchiveURL)
	}

	cs, ok, _ := f.store.Get(ctx, "abc")
	if !ok || cs.Transcript == nil || *cs.Transcript != "hello there" || *cs.Translation != "[es] hello there" {
		t.Fatalf("expected results stored on the row: %+v", cs)
	}
	f.assertTempDirEmpty(t)
	if len(f.metrics.ingest) != 1 || f.metrics.ingest[0] != "ok" {
		t.Fatalf("expected ok ingest metric, got %v", f.metrics.ingest)
	}
}

func TestPipeline_MissingRowIsSilent(t *testing.T) {
	f := newPipelineFixture(t)

	if _, err := f.pipeline.Run(context.Background(), "gone", "https://example.com/r.mp3"); err != nil {
		t.Fatalf("expected no error for missing row, got %v", err)
	}
	if f.archiver.gotKey != "gone.mp3" {
		t.Fatalf("expected extension from url, got %q", f.archiver.gotKey)
	}
	f.assertTempDirEmpty(t)
}

func TestPipeline_StageErrors(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(f *pipelineFixture)
		sentinel error
		stage    Stage
	}{
		{"fetch", func(f *pipelineFixture) { f.fetcher.err = errBoom }, ErrFetch, StageFetch},
		{"recognize", func(f *pipelineFixture) { f.recognizer.err = errBoom }, ErrRecognition, StageRecognize},
		{"translate", func(f *pipelineFixture) { f.translator.err = errBoom }, ErrTranslation, StageTranslate},
		{"archive", func(f *pipelineFixture) { f.archiver.err = errBoom }, ErrArchive, StageArchive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPipelineFixture(t)
			tc.setup(f)

			_, err := f.pipeline.Run(context.Background(), "abc", "https://example.com/r")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrIngestFailure) || !errors.Is(err, tc.sentinel) || !errors.Is(err, errBoom) {
				t.Fatalf("unexpected error chain: %v", err)
			}
			var ie *IngestError
			if !errors.As(err, &ie) || ie.Stage != tc.stage || ie.UUID != "abc" {
				t.Fatalf("expected IngestError at %s, got %v", tc.stage, err)
			}
			f.assertTempDirEmpty(t)
			if f.metrics.ingest[0] != string(tc.stage) {
				t.Fatalf("expected %s metric, got %v", tc.stage, f.metrics.ingest)
			}
		})
	}
}

func TestPipeline_FetchErrorSkipsServices(t *testing.T) {
	f := newPipelineFixture(t)
	f.fetcher.err = errBoom

	_, _ = f.pipeline.Run(context.Background(), "abc", "https://example.com/r")
	if f.recognizer.calls+f.translator.calls+f.archiver.calls != 0 {
		t.Fatalf("expected no downstream calls after fetch failure")
	}
}

func TestAudioExt(t *testing.T) {
	cases := map[string]string{
		"https://api.nexmo.com/v1/files/aaa-bbb": ".wav",
		"https://example.com/a/b.MP3":            ".mp3",
		"https://example.com/a/b.mp3?x=1":        ".mp3",
		"https://example.com/a/b.toolongext":     ".wav",
		"::bad::":                                ".wav",
	}
	for in, want := range cases {
		if got := audioExt(in); got != want {
			t.Fatalf("audioExt(%q) = %q, want %q", in, got, want)
		}
	}
}
