package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helpr-dev/helpr/internal/config"
	"github.com/helpr-dev/helpr/internal/domain"
	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

func newAuth(store *memStore) *AuthService {
	cfg := config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            4, // min cost keeps the test fast
	}
	return NewAuthService(cfg, AuthDependencies{UserRepo: &memUserRepo{s: store}})
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMemStore()
	svc := newAuth(store)

	user, token, _, err := svc.Register(context.Background(), "Ada", "  Ada@Example.COM ", "hunter2secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email must be normalized, got %s", user.Email)
	}
	if token == "" {
		t.Error("register must issue a token")
	}
	if user.IsAdmin || user.IsMentor {
		t.Error("new users start without roles")
	}

	logged, token, _, err := svc.Login(context.Background(), "ada@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Error("login must resolve the registered user and issue a token")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMemStore()
	svc := newAuth(store)

	if _, _, _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, _, err := svc.Register(context.Background(), "Imposter", "ada@example.com", "different")
	if err == nil {
		t.Fatal("duplicate email must be rejected")
	}
	if code := apperrors.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", code)
	}
}

// conflictUserRepo simulates losing a registration race: the email check sees
// no user, but the insert hits the unique constraint.
type conflictUserRepo struct {
	*memUserRepo
}

func (r *conflictUserRepo) Create(_ context.Context, _ *domain.User) error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}
}

func TestRegister_RaceOnUniqueEmail(t *testing.T) {
	store := newMemStore()
	cfg := config.Config{}
	cfg.Auth = config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo: &conflictUserRepo{memUserRepo: &memUserRepo{s: store}},
	})

	_, _, _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2secret")
	if err == nil {
		t.Fatal("constraint violation must surface as an error")
	}
	de := apperrors.ToDomainError(err)
	if de.Code != "VALIDATION_FAILED" {
		t.Errorf("unique violation must map to VALIDATION_FAILED, got %s", de.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMemStore()
	svc := newAuth(store)

	if _, _, _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for name, attempt := range map[string][2]string{
		"wrong password": {"ada@example.com", "wrong"},
		"unknown email":  {"nobody@example.com", "hunter2secret"},
	} {
		_, _, _, err := svc.Login(context.Background(), attempt[0], attempt[1])
		if err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
		if code := apperrors.ToDomainError(err).Code; code != "UNAUTHORIZED" {
			t.Errorf("%s: expected UNAUTHORIZED, got %s", name, code)
		}
	}
}
