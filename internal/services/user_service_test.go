package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartdues/internal/auth"
	"smartdues/internal/storage"
	"smartdues/internal/storage/memory"
)

func newUserService() *UserService {
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	return NewUserService(memory.New(), jwt)
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()

	user, token, err := svc.Signup(ctx, "A@Example.com", "long enough password", "+39123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "a@example.com" {
		t.Errorf("email not lowercased: %q", user.Email)
	}
	if token == "" {
		t.Errorf("signup must return a token")
	}
	if user.PasswordHash == "long enough password" {
		t.Errorf("password stored in plaintext")
	}

	_, token, err = svc.Login(ctx, "a@example.com", "long enough password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Errorf("login must return a token")
	}
}

func TestSignupRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()

	if _, _, err := svc.Signup(ctx, "a@example.com", "long enough password", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, _, err := svc.Signup(ctx, "a@example.com", "another password!", "")
	if !errors.Is(err, storage.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()

	if _, _, err := svc.Signup(ctx, "not-an-email", "long enough password", ""); !errors.Is(err, auth.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, _, err := svc.Signup(ctx, "a@example.com", "short", ""); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()

	if _, _, err := svc.Signup(ctx, "a@example.com", "long enough password", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@example.com", "wrong password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
