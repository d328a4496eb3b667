package calls

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

type fakeFetcher struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
	got   []byte
}

func (r *fakeRecognizer) Recognize(ctx context.Context, audio io.Reader) (string, error) {
	r.calls++
	b, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	r.got = b
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

type fakeTranslator struct {
	err     error
	calls   int
	gotLang string
}

func (t *fakeTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	t.calls++
	t.gotLang = targetLang
	if t.err != nil {
		return "", t.err
	}
	return "[" + targetLang + "] " + text, nil
}

type fakeArchiver struct {
	err       error
	calls     int
	gotPath   string
	gotBucket string
	gotKey    string
	fileBytes []byte
	onUpload  func()
}

func (a *fakeArchiver) Upload(ctx context.Context, localPath, bucket, key string) (string, error) {
	a.calls++
	a.gotPath, a.gotBucket, a.gotKey = localPath, bucket, key
	a.fileBytes, _ = os.ReadFile(localPath)
	if a.onUpload != nil {
		a.onUpload()
	}
	if a.err != nil {
		return "", a.err
	}
	return "https://" + bucket + ".s3.amazonaws.com/" + key, nil
}

type fakeIngester struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{}
}

func (i *fakeIngester) Run(ctx context.Context, uuid, recordingURL string) (Result, error) {
	i.mu.Lock()
	i.calls++
	i.mu.Unlock()
	if i.block != nil {
		<-i.block
	}
	if i.err != nil {
		return Result{}, i.err
	}
	return Result{ArchiveURL: "https://archive/" + uuid}, nil
}

func (i *fakeIngester) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

type fakeClaimer struct {
	ok       bool
	err      error
	released int
}

func (c *fakeClaimer) Claim(ctx context.Context, uuid string) (func(), bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	return func() { c.released++ }, c.ok, nil
}

type recordedEvent struct{ kind, status, action string }

type fakeMetrics struct {
	mu     sync.Mutex
	events []recordedEvent
	ingest []string
}

func (m *fakeMetrics) RecordWebhookEvent(kind, status, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{kind, status, action})
}

func (m *fakeMetrics) RecordIngest(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingest = append(m.ingest, stage)
}

var errBoom = errors.New("boom")
