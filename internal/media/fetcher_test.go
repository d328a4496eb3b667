package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type headerAuthorizer struct{ token string }

func (a headerAuthorizer) Authorize(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.token)
	return nil
}

type failingAuthorizer struct{}

func (failingAuthorizer) Authorize(*http.Request) error { return errors.New("no key") }

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{Authorizer: headerAuthorizer{token: "tok"}})
	data, err := f.Get(context.Background(), srv.URL+"/rec")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("unexpected body: %q", data)
	}
}

func TestGetNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Options{}).Get(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected unexpected status error, got %v", err)
	}
}

func TestGetMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	if _, err := NewHTTPFetcher(Options{MaxBytes: 5}).Get(context.Background(), srv.URL); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
	if data, err := NewHTTPFetcher(Options{MaxBytes: 10}).Get(context.Background(), srv.URL); err != nil || len(data) != 10 {
		t.Fatalf("expected exact-size body accepted, got %d err=%v", len(data), err)
	}
}

func TestGetAuthorizerError(t *testing.T) {
	if _, err := NewHTTPFetcher(Options{Authorizer: failingAuthorizer{}}).Get(context.Background(), "http://127.0.0.1:1/x"); err == nil {
		t.Fatalf("expected authorize error")
	}
}
