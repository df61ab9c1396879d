package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strings"

	"orrery-server/internal/shared/errors"
	"orrery-server/internal/user"
)

// Service handles registration and credential login on top of the user
// store. OAuth sign-in funnels through FindOrCreateByOAuth so both paths
// produce the same user rows and JWTs.
type Service struct {
	users  *user.Service
	logger *slog.Logger
}

func NewService(users *user.Service, logger *slog.Logger) *Service {
	logger.Debug("Initializing auth service")

	return &Service{
		users:  users,
		logger: logger,
	}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*user.User, string, error) {
	logger := s.logger.With("component", "auth_service", "operation", "register", "email", email)
	logger.Debug("Registering user")

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, "", errors.Validation("username must not be empty")
	}
	if email == "" {
		return nil, "", errors.Validation("email must not be empty")
	}
	if len(password) < minPasswordLength {
		return nil, "", errors.Validationf("password must be at least %d characters long", minPasswordLength)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", errors.Conflictf("an account with email %s already exists", email)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", errors.WrapInternal("failed to hash password", err)
	}

	created, err := s.users.Create(ctx, username, email, hash, nil)
	if err != nil {
		return nil, "", err
	}

	token, err := GenerateJWT(created.ID, created.Username, created.Email)
	if err != nil {
		return nil, "", errors.WrapInternal("failed to generate token", err)
	}

	logger.Info("User registered", "user_id", created.ID)
	return created, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	logger := s.logger.With("component", "auth_service", "operation", "login", "email", email)
	logger.Debug("Authenticating user")

	email = strings.ToLower(strings.TrimSpace(email))

	found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if found == nil {
		return nil, "", errors.Unauthorized("invalid email or password")
	}

	if !CheckPassword(found.PasswordHash, password) {
		logger.Warn("Password check failed", "user_id", found.ID)
		return nil, "", errors.Unauthorized("invalid email or password")
	}

	token, err := GenerateJWT(found.ID, found.Username, found.Email)
	if err != nil {
		return nil, "", errors.WrapInternal("failed to generate token", err)
	}

	logger.Info("User authenticated", "user_id", found.ID)
	return found, token, nil
}

// FindOrCreateByOAuth matches an OAuth identity to a user row by email,
// creating the account on first sign-in. OAuth-created accounts get an
// unguessable password hash so credential login stays closed for them.
func (s *Service) FindOrCreateByOAuth(ctx context.Context, email, name string, avatarURL *string) (*user.User, string, error) {
	logger := s.logger.With("component", "auth_service", "operation", "oauth_sign_in", "email", email)

	email = strings.ToLower(strings.TrimSpace(email))

	found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if found == nil {
		randomSecret, err := randomPassword()
		if err != nil {
			return nil, "", errors.WrapInternal("failed to generate account secret", err)
		}
		hash, err := HashPassword(randomSecret)
		if err != nil {
			return nil, "", errors.WrapInternal("failed to hash account secret", err)
		}

		username := name
		if strings.TrimSpace(username) == "" {
			username = email
		}

		found, err = s.users.Create(ctx, username, email, hash, avatarURL)
		if err != nil {
			return nil, "", err
		}
		logger.Info("User created via OAuth", "user_id", found.ID)
	}

	token, err := GenerateJWT(found.ID, found.Username, found.Email)
	if err != nil {
		return nil, "", errors.WrapInternal("failed to generate token", err)
	}

	return found, token, nil
}

func randomPassword() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
