package planettype

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
	logger.Debug("Initializing planet type repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetPlanetTypeByID(ctx context.Context, id int) (*PlanetType, error) {
	logger := r.logger.With(
		"component", "planet_type_repository",
		"operation", "get_by_id",
		"planet_type_id", id,
	)
	logger.Debug("Getting planet type by ID")

	query := `
		SELECT id, name, min_mass, max_mass, min_radius, max_radius, has_rings, has_surface, max_moons
		FROM planet_types
		WHERE id = $1
	`

	var planetType PlanetType
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&planetType.ID,
		&planetType.Name,
		&planetType.MinMass,
		&planetType.MaxMass,
		&planetType.MinRadius,
		&planetType.MaxRadius,
		&planetType.HasRings,
		&planetType.HasSurface,
		&planetType.MaxMoons,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No planet type found with ID")
			return nil, nil
		}
		logger.Error("Database error getting planet type", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found planet type", "name", planetType.Name)
	return &planetType, nil
}

func (r *Repository) GetAllPlanetTypes(ctx context.Context) ([]PlanetType, error) {
	logger := r.logger.With("component", "planet_type_repository", "operation", "get_all")
	logger.Debug("Retrieving all planet types")

	query := `
		SELECT id, name, min_mass, max_mass, min_radius, max_radius, has_rings, has_surface, max_moons
		FROM planet_types
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query planet types", "error", err)
		return nil, fmt.Errorf("failed to query planet types: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var planetTypes []PlanetType
	for rows.Next() {
		var planetType PlanetType
		err := rows.Scan(
			&planetType.ID,
			&planetType.Name,
			&planetType.MinMass,
			&planetType.MaxMass,
			&planetType.MinRadius,
			&planetType.MaxRadius,
			&planetType.HasRings,
			&planetType.HasSurface,
			&planetType.MaxMoons,
		)
		if err != nil {
			logger.Error("Failed to scan planet type row", "error", err)
			return nil, fmt.Errorf("failed to scan planet type: %w", err)
		}
		planetTypes = append(planetTypes, planetType)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating planet types: %w", err)
	}

	logger.Debug("Planet types retrieved", "count", len(planetTypes))
	return planetTypes, nil
}
