package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"call-recording/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(admins ...string) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	return NewService(repo, Options{AdminUsernames: admins, BcryptCost: bcrypt.MinCost}), repo
}

func TestSignupHashesPasswordAndAssignsRole(t *testing.T) {
	svc, _ := newTestService("root")
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Username: " alice ", Password: "s3cret-pass", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.ID == 0 || u.Username != "alice" || u.Role != rbac.RoleAgent {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PasswordHash == "s3cret-pass" || !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", u.PasswordHash)
	}

	admin, err := svc.Signup(ctx, SignupInput{Username: "root", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if admin.Role != rbac.RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}
}

func TestSignupRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Username: "bob", Password: "password1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Username: "bob", Password: "password2"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Username: "", Password: "password1"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid username, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Username: "a b", Password: "password1"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid username, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Username: "carol", Password: "short"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected short password error, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, _ := svc.Signup(ctx, SignupInput{Username: "dave", Password: "correct-horse"})

	got, err := svc.Authenticate(ctx, "dave", "correct-horse")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %d, got %d", u.ID, got.ID)
	}
	if _, err := svc.Authenticate(ctx, "dave", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	disabled := repo.byID[u.ID]
	disabled.Disabled = true
	repo.byID[u.ID] = disabled
	if _, err := svc.Authenticate(ctx, "dave", "correct-horse"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
	if _, err := svc.Get(ctx, u.ID); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected disabled on get, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
