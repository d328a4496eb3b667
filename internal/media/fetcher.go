package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrUnexpectedStatus = errors.New("media: unexpected status")
	ErrTooLarge         = errors.New("media: recording exceeds size limit")
)

// Authorizer decorates outbound download requests, e.g. with a provider JWT.
type Authorizer interface {
	Authorize(req *http.Request) error
}

type Options struct {
	Timeout time.Duration

	// MaxBytes caps the download size. Zero means unlimited.
	MaxBytes int64

	Authorizer Authorizer
}

// HTTPFetcher downloads recordings over HTTP(S).
type HTTPFetcher struct {
	client     *http.Client
	authorizer Authorizer
	maxBytes   int64
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &HTTPFetcher{
		client:     &http.Client{Timeout: opts.Timeout},
		authorizer: opts.Authorizer,
		maxBytes:   opts.MaxBytes,
	}
}

// Get returns the full response body. Any non-2xx status is an error.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("media request: %w", err)
	}
	if f.authorizer != nil {
		if err := f.authorizer.Authorize(req); err != nil {
			return nil, fmt.Errorf("media authorize: %w", err)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("media read: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
