package telephony

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"call-recording/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSignature = errors.New("telephony: missing webhook signature")
	ErrInvalidSignature = errors.New("telephony: invalid webhook signature")
	ErrPayloadMismatch  = errors.New("telephony: webhook payload hash mismatch")
)

// maxWebhookBody bounds the body read while checking the payload hash.
const maxWebhookBody = 1 << 20

// SignatureClaims is the token Vonage attaches to signed webhooks.
type SignatureClaims struct {
	jwt.RegisteredClaims
	APIKey        string `json:"api_key,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
	PayloadHash   string `json:"payload_hash,omitempty"`
}

// SignatureVerifier checks HS256 signed webhooks against the account's
// signature secret.
type SignatureVerifier struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("telephony: signature secret required")
	}
	return &SignatureVerifier{secret: []byte(secret), leeway: 5 * time.Minute, now: time.Now}, nil
}

// Verify validates the bearer token and, when a body is present, that the
// token's payload_hash is the SHA-256 of body.
func (v *SignatureVerifier) Verify(authorization string, body []byte) (*SignatureClaims, error) {
	raw, ok := bearerToken(authorization)
	if !ok {
		return nil, ErrMissingSignature
	}

	claims := &SignatureClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(v.leeway),
		jwt.WithIssuedAt(),
	)
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidSignature
	}

	if len(body) == 0 && claims.PayloadHash == "" {
		return claims, nil
	}
	sum := sha256.Sum256(body)
	want := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(claims.PayloadHash)), []byte(want)) != 1 {
		return nil, ErrPayloadMismatch
	}
	return claims, nil
}

// Middleware rejects unsigned or tampered webhooks with 401. The body is
// restored for downstream binding.
func (v *SignatureVerifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
				return
			}
			body = b
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		if _, err := v.Verify(c.GetHeader("Authorization"), body); err != nil {
			logger.FromGin(c).Warn("webhook signature rejected", "path", c.FullPath(), "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
