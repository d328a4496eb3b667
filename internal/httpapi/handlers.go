package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"call-recording/internal/audit"
	"call-recording/internal/auth"
	"call-recording/internal/calls"
	"call-recording/internal/recordings"
	"call-recording/internal/reporting"
	"call-recording/internal/users"
	"call-recording/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ActiveCallLister is satisfied by *calls.Coordinator.
type ActiveCallLister interface {
	ActiveCalls(ctx context.Context, substring string, page, limit int) ([]calls.CallState, int, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth       *auth.Manager
	Users      *users.Service
	Recordings *recordings.Service
	Reporting  *reporting.Service
	Calls      ActiveCallLister
	Audit      *audit.Service

	// MaxUploadBytes caps multipart recording uploads. Zero means 100 MiB.
	MaxUploadBytes int64

	Now func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// --- Auth ---

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name"`
}

func (h Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Signup(c.Request.Context(), users.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	switch {
	case errors.Is(err, users.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, users.ErrUsernameTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "username already registered"})
		return
	case err != nil:
		serverError(c, "signup failed", err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// loginRequest binds from JSON or an OAuth2 password form.
type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	u, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
		return
	case errors.Is(err, users.ErrDisabled):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "inactive user"})
		return
	case err != nil:
		serverError(c, "login failed", err)
		return
	}
	h.issueTokens(c, u)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a new pair. The role is reloaded
// from the user so demotions take effect.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, h.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	u, err := h.Users.Get(c.Request.Context(), id)
	if errors.Is(err, users.ErrNotFound) || errors.Is(err, users.ErrDisabled) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if err != nil {
		serverError(c, "refresh failed", err)
		return
	}
	h.issueTokens(c, u)
}

func (h Handlers) issueTokens(c *gin.Context, u users.User) {
	pair, err := h.Auth.IssuePair(h.now(), strconv.FormatInt(u.ID, 10), u.Role)
	if err != nil {
		serverError(c, "token issuance failed", err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(pair.ExpiresIn / time.Second),
	})
}

func (h Handlers) CurrentUser(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	u, err := h.Users.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, users.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	case errors.Is(err, users.ErrDisabled):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "inactive user"})
		return
	case err != nil:
		serverError(c, "user lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// callerID reads the numeric user id injected by auth.RequireAccessToken.
func callerID(c *gin.Context) (int64, bool) {
	raw, err := auth.UserID(c.Request.Context())
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func serverError(c *gin.Context, msg string, err error) {
	logger.FromGin(c).Error(msg, "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
