package service

import (
	"context"
	"log/slog"

	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/repository"
)

// UserService edits the signed-in user's profile.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UpdateProfile sets name and about (2–30 characters each).
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, about string) (*model.User, error) {
	name, err := validateText("name", name)
	if err != nil {
		return nil, err
	}
	about, err = validateText("about", about)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, about)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

// UpdateAvatar sets the avatar link, which must be an http(s) URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatar string) (*model.User, error) {
	avatar, err := validateLink("avatar", avatar)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateAvatar(ctx, userID, avatar)
	if err != nil {
		return nil, err
	}
	s.logger.Info("avatar updated", slog.String("userID", userID))
	return user, nil
}
