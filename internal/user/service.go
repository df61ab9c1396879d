package user

import (
	"context"
	"log/slog"

	"orrery-server/internal/shared/errors"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing user service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load user", err)
	}
	if user == nil {
		return nil, errors.NotFoundf("user %d not found", id)
	}
	return user, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.WrapInternal("failed to look up user", err)
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, username, email, passwordHash string, avatarURL *string) (*User, error) {
	user, err := s.repo.CreateUser(ctx, username, email, passwordHash, avatarURL)
	if err != nil {
		return nil, errors.WrapInternal("failed to create user", err)
	}
	return user, nil
}

func (s *Service) UpdateAvatar(ctx context.Context, id int, avatarURL *string) (*User, error) {
	if err := s.repo.UpdateAvatar(ctx, id, avatarURL); err != nil {
		return nil, errors.WrapInternal("failed to update avatar", err)
	}
	return s.GetByID(ctx, id)
}
