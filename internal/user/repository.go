package user

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"orrery-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing user repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string, avatarURL *string) (*User, error) {
	logger := r.logger.With(
		"component", "user_repository",
		"operation", "create_user",
		"username", username,
		"email", email,
	)
	logger.Info("Creating new user")

	query := `
		INSERT INTO users (username, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, password_hash, avatar_url, created_at, updated_at
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, username, email, passwordHash, avatarURL).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created successfully", "user_id", user.ID)
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	logger := r.logger.With(
		"component", "user_repository",
		"operation", "get_by_id",
		"user_id", id,
	)
	logger.Debug("Getting user by ID")

	query := `
		SELECT id, username, email, password_hash, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No user found with ID")
			return nil, nil
		}
		logger.Error("Database error getting user by ID", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found user by ID", "username", user.Username)
	return &user, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	logger := r.logger.With(
		"component", "user_repository",
		"operation", "find_by_email",
		"email", email,
	)
	logger.Debug("Finding user by email")

	query := `
		SELECT id, username, email, password_hash, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No user found with email")
			return nil, nil
		}
		logger.Error("Database error finding user by email", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found user by email", "user_id", user.ID)
	return &user, nil
}

func (r *Repository) UpdateAvatar(ctx context.Context, id int, avatarURL *string) error {
	logger := r.logger.With(
		"component", "user_repository",
		"operation", "update_avatar",
		"user_id", id,
	)
	logger.Debug("Updating user avatar")

	query := `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, avatarURL, id)
	if err != nil {
		logger.Error("Failed to update avatar", "error", err)
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
