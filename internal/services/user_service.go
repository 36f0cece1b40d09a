package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"smartdues/internal/auth"
	"smartdues/internal/core"
	"smartdues/internal/storage"
)

// UserService handles signup and login.
type UserService struct {
	store storage.Store
	jwt   *auth.JWTManager
	newID func() string
}

func NewUserService(store storage.Store, jwt *auth.JWTManager) *UserService {
	return &UserService{store: store, jwt: jwt, newID: uuid.NewString}
}

// Signup registers a new user and returns a session token.
func (s *UserService) Signup(ctx context.Context, email, password, phone string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, "", auth.ErrInvalidEmail
	}
	if err := auth.ValidatePassword(password); err != nil {
		return core.User{}, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, "", err
	}

	user := core.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(phone),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, "", auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return core.User{}, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}
