// Package service holds the business rules of the local API.
//
// Handlers parse HTTP and call a service; services validate, enforce
// ownership and call the repositories. Services never see an http.Request and
// return apperror values, which the handler layer maps to status codes.
//
//	Handler (HTTP) → Service (rules) → Repository (SQLite)
//	               ↘ auth.TokenService / auth.PasswordService
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/auth"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/repository"
)

// AuthService handles sign-up, sign-in and token validation.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Signup registers a new account with the default profile.
//
// The email is normalised to lower case before it is stored, so sign-in is
// case-insensitive. An already registered email returns apperror.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         model.DefaultUserName,
		About:        model.DefaultUserAbout,
		Avatar:       model.DefaultUserAvatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user, nil
}

// Signin checks the credentials and returns a signed token.
//
// Unknown email and wrong password produce the same ErrUnauthorized so the
// response does not reveal which accounts exist.
func (s *AuthService) Signin(ctx context.Context, email, password string) (string, error) {
	wrong := apperror.Unauthorized("wrong email or password")

	user, err := s.users.GetByEmail(ctx, normaliseEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", wrong
		}
		return "", fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", wrong
		}
		return "", fmt.Errorf("service/auth: verifying password of %s: %w", user.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))
	return token, nil
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authorization required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		// A valid token for a deleted account is an auth failure, not a 404.
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("authorization required")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	return user, nil
}
