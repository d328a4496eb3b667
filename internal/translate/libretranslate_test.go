package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTranslate(t *testing.T) {
	var got translateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "hola mundo"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "k", time.Second)
	out, err := c.Translate(context.Background(), "hello world", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "hola mundo" {
		t.Fatalf("unexpected translation: %q", out)
	}
	if got.Q != "hello world" || got.Source != "auto" || got.Target != "es" || got.APIKey != "k" {
		t.Fatalf("unexpected request body: %+v", got)
	}
}

func TestTranslateBlankSkipsRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	out, err := New(srv.URL, "", time.Second).Translate(context.Background(), "  ", "es")
	if err != nil || out != "" {
		t.Fatalf("expected empty result, got %q err=%v", out, err)
	}
	if calls != 0 {
		t.Fatalf("expected no request for blank text")
	}
}

func TestTranslateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"es is not supported"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Translate(context.Background(), "hi", "es")
	if err == nil || !strings.Contains(err.Error(), "es is not supported") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestTranslateStatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Translate(context.Background(), "hi", "es")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
