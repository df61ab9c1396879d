package system

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
	logger.Debug("Initializing system repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) getExecutor(tx *database.Tx) database.Executor {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Repository) CreateSystem(ctx context.Context, input SystemInput, userID int, tx *database.Tx) (*System, error) {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "create_system",
		"user_id", userID,
		"name", input.Name,
	)
	logger.Debug("Creating system")

	query := `
		INSERT INTO planetary_systems (name, description, distance_ly, thumbnail_url, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, distance_ly, thumbnail_url, user_id, created_at, updated_at
	`

	var system System
	err := exec.QueryRowContext(ctx, query, input.Name, input.Description, input.DistanceLY, input.ThumbnailURL, userID).Scan(
		&system.ID,
		&system.Name,
		&system.Description,
		&system.DistanceLY,
		&system.ThumbnailURL,
		&system.UserID,
		&system.CreatedAt,
		&system.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to create system", "error", err)
		return nil, fmt.Errorf("failed to create system: %w", err)
	}

	logger.Debug("System created successfully", "system_id", system.ID)
	return &system, nil
}

func (r *Repository) CreateStar(ctx context.Context, systemID int, input StarInput, tx *database.Tx) (*Star, error) {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "create_star",
		"system_id", systemID,
		"name", input.Name,
	)
	logger.Debug("Creating star")

	query := `
		INSERT INTO stars (system_id, name, description, mass_solar, radius_solar, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, system_id, name, description, mass_solar, radius_solar, thumbnail_url, created_at, updated_at
	`

	var star Star
	err := exec.QueryRowContext(ctx, query, systemID, input.Name, input.Description, input.MassSolar, input.RadiusSolar, input.ThumbnailURL).Scan(
		&star.ID,
		&star.SystemID,
		&star.Name,
		&star.Description,
		&star.MassSolar,
		&star.RadiusSolar,
		&star.ThumbnailURL,
		&star.CreatedAt,
		&star.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to create star", "error", err)
		return nil, fmt.Errorf("failed to create star: %w", err)
	}

	logger.Debug("Star created successfully", "star_id", star.ID)
	return &star, nil
}

func (r *Repository) GetSystemByID(ctx context.Context, id int) (*System, error) {
	logger := r.logger.With(
		"component", "system_repository",
		"operation", "get_by_id",
		"system_id", id,
	)
	logger.Debug("Getting system by ID")

	query := `
		SELECT id, name, description, distance_ly, thumbnail_url, user_id, created_at, updated_at
		FROM planetary_systems
		WHERE id = $1
	`

	var system System
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&system.ID,
		&system.Name,
		&system.Description,
		&system.DistanceLY,
		&system.ThumbnailURL,
		&system.UserID,
		&system.CreatedAt,
		&system.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No system found with ID")
			return nil, nil
		}
		logger.Error("Database error getting system", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found system", "name", system.Name)
	return &system, nil
}

func (r *Repository) GetStarBySystemID(ctx context.Context, systemID int) (*Star, error) {
	logger := r.logger.With(
		"component", "system_repository",
		"operation", "get_star",
		"system_id", systemID,
	)
	logger.Debug("Getting star by system ID")

	query := `
		SELECT id, system_id, name, description, mass_solar, radius_solar, thumbnail_url, created_at, updated_at
		FROM stars
		WHERE system_id = $1
	`

	var star Star
	err := r.db.QueryRowContext(ctx, query, systemID).Scan(
		&star.ID,
		&star.SystemID,
		&star.Name,
		&star.Description,
		&star.MassSolar,
		&star.RadiusSolar,
		&star.ThumbnailURL,
		&star.CreatedAt,
		&star.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No star found for system")
			return nil, nil
		}
		logger.Error("Database error getting star", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found star", "name", star.Name)
	return &star, nil
}

func (r *Repository) GetAllSystems(ctx context.Context) ([]System, error) {
	logger := r.logger.With("component", "system_repository", "operation", "get_all")
	logger.Debug("Retrieving all systems")

	query := `
		SELECT id, name, description, distance_ly, thumbnail_url, user_id, created_at, updated_at
		FROM planetary_systems
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query systems", "error", err)
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var systems []System
	for rows.Next() {
		var system System
		err := rows.Scan(
			&system.ID,
			&system.Name,
			&system.Description,
			&system.DistanceLY,
			&system.ThumbnailURL,
			&system.UserID,
			&system.CreatedAt,
			&system.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan system row", "error", err)
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, system)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating systems: %w", err)
	}

	logger.Debug("Systems retrieved", "count", len(systems))
	return systems, nil
}

func (r *Repository) UpdateSystem(ctx context.Context, sys *System) (*System, error) {
	logger := r.logger.With(
		"component", "system_repository",
		"operation", "update_system",
		"system_id", sys.ID,
	)
	logger.Debug("Updating system")

	query := `
		UPDATE planetary_systems
		SET name = $1, description = $2, distance_ly = $3, thumbnail_url = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, name, description, distance_ly, thumbnail_url, user_id, created_at, updated_at
	`

	var updated System
	err := r.db.QueryRowContext(ctx, query, sys.Name, sys.Description, sys.DistanceLY, sys.ThumbnailURL, sys.ID).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Description,
		&updated.DistanceLY,
		&updated.ThumbnailURL,
		&updated.UserID,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to update system", "error", err)
		return nil, fmt.Errorf("failed to update system: %w", err)
	}

	logger.Debug("System updated successfully")
	return &updated, nil
}

func (r *Repository) UpdateStar(ctx context.Context, star *Star) (*Star, error) {
	logger := r.logger.With(
		"component", "system_repository",
		"operation", "update_star",
		"star_id", star.ID,
	)
	logger.Debug("Updating star")

	query := `
		UPDATE stars
		SET name = $1, description = $2, mass_solar = $3, radius_solar = $4, thumbnail_url = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, system_id, name, description, mass_solar, radius_solar, thumbnail_url, created_at, updated_at
	`

	var updated Star
	err := r.db.QueryRowContext(ctx, query, star.Name, star.Description, star.MassSolar, star.RadiusSolar, star.ThumbnailURL, star.ID).Scan(
		&updated.ID,
		&updated.SystemID,
		&updated.Name,
		&updated.Description,
		&updated.MassSolar,
		&updated.RadiusSolar,
		&updated.ThumbnailURL,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to update star", "error", err)
		return nil, fmt.Errorf("failed to update star: %w", err)
	}

	logger.Debug("Star updated successfully")
	return &updated, nil
}

// DeletePlanetAggregatesBySystemID removes every planet under a system
// together with its dependent rows, in foreign-key dependency order.
func (r *Repository) DeletePlanetAggregatesBySystemID(ctx context.Context, systemID int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "delete_planet_aggregates",
		"system_id", systemID,
	)
	logger.Debug("Deleting planet aggregates for system")

	statements := []string{
		`DELETE FROM atmosphere_compounds WHERE planet_id IN (SELECT id FROM planets WHERE system_id = $1)`,
		`DELETE FROM atmospheres WHERE planet_id IN (SELECT id FROM planets WHERE system_id = $1)`,
		`DELETE FROM planet_compounds WHERE planet_id IN (SELECT id FROM planets WHERE system_id = $1)`,
		`DELETE FROM planets WHERE system_id = $1`,
	}

	for _, query := range statements {
		if _, err := exec.ExecContext(ctx, query, systemID); err != nil {
			logger.Error("Failed to delete planet aggregate rows", "error", err)
			return fmt.Errorf("failed to delete planet rows for system %d: %w", systemID, err)
		}
	}

	logger.Debug("Planet aggregates deleted")
	return nil
}

// DeleteStarBySystemID removes the system's star. A system without a star
// is corrupt, so zero affected rows is an error.
func (r *Repository) DeleteStarBySystemID(ctx context.Context, systemID int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "delete_star",
		"system_id", systemID,
	)
	logger.Debug("Deleting star")

	result, err := exec.ExecContext(ctx, `DELETE FROM stars WHERE system_id = $1`, systemID)
	if err != nil {
		logger.Error("Failed to delete star", "error", err)
		return fmt.Errorf("failed to delete star for system %d: %w", systemID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted star rows: %w", err)
	}
	if rows == 0 {
		logger.Error("No star row found for system during delete")
		return fmt.Errorf("no star found for system %d", systemID)
	}

	logger.Debug("Star deleted")
	return nil
}

func (r *Repository) DeleteSystem(ctx context.Context, id int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "delete_system",
		"system_id", id,
	)
	logger.Debug("Deleting system")

	result, err := exec.ExecContext(ctx, `DELETE FROM planetary_systems WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete system", "error", err)
		return fmt.Errorf("failed to delete system %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted system rows: %w", err)
	}
	if rows == 0 {
		logger.Error("No system row found during delete")
		return fmt.Errorf("no system found with id %d", id)
	}

	logger.Debug("System deleted")
	return nil
}
