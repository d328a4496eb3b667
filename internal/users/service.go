package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"call-recording/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidArgument    = errors.New("users: invalid argument")
	ErrUsernameTaken      = errors.New("users: username already registered")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	ErrDisabled           = errors.New("users: account disabled")
	ErrNotFound           = errors.New("users: not found")
)

const (
	minPasswordLen = 8
	maxUsernameLen = 64
)

type Options struct {
	// AdminUsernames sign up with the admin role; everyone else is an agent.
	AdminUsernames []string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	repo   Repository
	admins map[string]struct{}
	cost   int
}

func NewService(repo Repository, opts Options) *Service {
	admins := make(map[string]struct{}, len(opts.AdminUsernames))
	for _, name := range opts.AdminUsernames {
		if name = strings.TrimSpace(name); name != "" {
			admins[name] = struct{}{}
		}
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, admins: admins, cost: cost}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(username) > maxUsernameLen || strings.ContainsAny(username, " \t\r\n") {
		return User{}, fmt.Errorf("%w: username", ErrInvalidArgument)
	}
	if len(in.Password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes
		return User{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	role := rbac.RoleAgent
	if _, ok := s.admins[username]; ok {
		role = rbac.RoleAdmin
	}
	return s.repo.Create(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
	})
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if u.Disabled {
		return User{}, ErrDisabled
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.Disabled {
		return User{}, ErrDisabled
	}
	return u, nil
}
