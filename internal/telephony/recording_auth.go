package telephony

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RecordingAuthorizer signs Vonage application JWTs for recording downloads.
// It satisfies media.Authorizer.
type RecordingAuthorizer struct {
	applicationID string
	key           *rsa.PrivateKey
	ttl           time.Duration
	now           func() time.Time
}

type applicationClaims struct {
	jwt.RegisteredClaims
	ApplicationID string `json:"application_id"`
}

func NewRecordingAuthorizer(applicationID string, privateKeyPEM []byte) (*RecordingAuthorizer, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, errors.New("telephony: application id required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("telephony: parse private key: %w", err)
	}
	return &RecordingAuthorizer{applicationID: applicationID, key: key, ttl: 15 * time.Minute, now: time.Now}, nil
}

func LoadRecordingAuthorizer(applicationID, privateKeyPath string) (*RecordingAuthorizer, error) {
	pem, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("telephony: read private key: %w", err)
	}
	return NewRecordingAuthorizer(applicationID, pem)
}

// Token returns a fresh RS256 application token.
func (a *RecordingAuthorizer) Token() (string, error) {
	now := a.now().UTC()
	claims := applicationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		ApplicationID: a.applicationID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
}

// Authorize attaches the bearer token to requests for provider-hosted
// recordings. Other hosts are left untouched so the key never leaks.
func (a *RecordingAuthorizer) Authorize(req *http.Request) error {
	if !isProviderHost(req.URL.Hostname()) {
		return nil
	}
	tok, err := a.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

func isProviderHost(host string) bool {
	host = strings.ToLower(host)
	for _, suffix := range []string{"nexmo.com", "vonage.com"} {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
