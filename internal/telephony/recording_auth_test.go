package telephony

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testRSAKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	return key, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der})
}

func TestRecordingAuthorizerSignsProviderRequests(t *testing.T) {
	key, pemBytes := testRSAKey(t)
	a, err := NewRecordingAuthorizer("app-1", pemBytes)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	now := time.Unix(1_700_000_000, 0)
	a.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "https://api.nexmo.com/v1/files/abc", nil)
	if err := a.Authorize(req); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	raw, ok := bearerToken(req.Header.Get("Authorization"))
	if !ok {
		t.Fatalf("expected bearer token")
	}

	claims := &applicationClaims{}
	_, err = jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}), jwt.WithTimeFunc(func() time.Time { return now })).
		ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return &key.PublicKey, nil })
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ApplicationID != "app-1" || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.Time.After(now) {
		t.Fatalf("expected expiry after issue time")
	}
}

func TestRecordingAuthorizerSkipsOtherHosts(t *testing.T) {
	_, pemBytes := testRSAKey(t)
	a, _ := NewRecordingAuthorizer("app-1", pemBytes)

	for _, u := range []string{"https://cdn.example.com/a.wav", "https://evilnexmo.com/a.wav"} {
		req := httptest.NewRequest(http.MethodGet, u, nil)
		if err := a.Authorize(req); err != nil {
			t.Fatalf("authorize: %v", err)
		}
		if req.Header.Get("Authorization") != "" {
			t.Fatalf("expected no auth header for %s", u)
		}
	}
}

func TestNewRecordingAuthorizerRejectsBadKey(t *testing.T) {
	if _, err := NewRecordingAuthorizer("app-1", []byte("nope")); err == nil || !strings.Contains(err.Error(), "private key") {
		t.Fatalf("expected key error, got %v", err)
	}
	if _, err := NewRecordingAuthorizer("", nil); err == nil {
		t.Fatalf("expected application id error")
	}
}
