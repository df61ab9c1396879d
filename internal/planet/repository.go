package planet

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"orrery-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing planet repository")

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

const planetColumns = `id, system_id, type_id, name, description, mass, radius, axial_tilt, rotation_speed, albedo, orbital_distance_au, has_rings, moon_count, texture_url, rings_texture_url, created_at, updated_at`

func scanPlanet(row interface{ Scan(...interface{}) error }, planet *Planet) error {
	return row.Scan(
		&planet.ID,
		&planet.SystemID,
		&planet.TypeID,
		&planet.Name,
		&planet.Description,
		&planet.Mass,
		&planet.Radius,
		&planet.AxialTilt,
		&planet.RotationSpeed,
		&planet.Albedo,
		&planet.OrbitalDistanceAU,
		&planet.HasRings,
		&planet.MoonCount,
		&planet.TextureURL,
		&planet.RingsTextureURL,
		&planet.CreatedAt,
		&planet.UpdatedAt,
	)
}

func (r *Repository) CreatePlanet(ctx context.Context, input PlanetInput, tx *database.Tx) (*Planet, error) {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "create_planet",
		"system_id", input.SystemID,
		"type_id", input.TypeID,
	)
	logger.Debug("Creating planet")

	query := `
		INSERT INTO planets (system_id, type_id, name, description, mass, radius, axial_tilt, rotation_speed, albedo, orbital_distance_au, has_rings, moon_count, texture_url, rings_texture_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + planetColumns

	var planet Planet
	err := scanPlanet(exec.QueryRowContext(ctx, query,
		input.SystemID,
		input.TypeID,
		input.Name,
		input.Description,
		input.Mass,
		input.Radius,
		input.AxialTilt,
		input.RotationSpeed,
		input.Albedo,
		input.OrbitalDistanceAU,
		input.HasRings,
		input.MoonCount,
		input.TextureURL,
		input.RingsTextureURL,
	), &planet)

	if err != nil {
		logger.Error("Failed to create planet", "error", err)
		return nil, fmt.Errorf("failed to create planet: %w", err)
	}

	logger.Debug("Planet created successfully", "planet_id", planet.ID)
	return &planet, nil
}

func (r *Repository) GetPlanetByID(ctx context.Context, id int) (*Planet, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "get_by_id",
		"planet_id", id,
	)
	logger.Debug("Getting planet by ID")

	query := `SELECT ` + planetColumns + ` FROM planets WHERE id = $1`

	var planet Planet
	err := scanPlanet(r.db.QueryRowContext(ctx, query, id), &planet)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No planet found with ID")
			return nil, nil
		}
		logger.Error("Database error getting planet", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found planet", "name", planet.Name)
	return &planet, nil
}

func (r *Repository) GetPlanetsBySystemID(ctx context.Context, systemID int) ([]Planet, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "get_by_system",
		"system_id", systemID,
	)
	logger.Debug("Getting planets by system ID")

	query := `SELECT ` + planetColumns + ` FROM planets WHERE system_id = $1 ORDER BY orbital_distance_au`

	rows, err := r.db.QueryContext(ctx, query, systemID)
	if err != nil {
		logger.Error("Failed to query planets", "error", err)
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var planets []Planet
	for rows.Next() {
		var planet Planet
		if err := scanPlanet(rows, &planet); err != nil {
			logger.Error("Failed to scan planet row", "error", err)
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		planets = append(planets, planet)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating planets: %w", err)
	}

	logger.Debug("Planets retrieved", "count", len(planets))
	return planets, nil
}

func (r *Repository) UpdatePlanet(ctx context.Context, planet *Planet, tx *database.Tx) (*Planet, error) {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "update_planet",
		"planet_id", planet.ID,
	)
	logger.Debug("Updating planet")

	query := `
		UPDATE planets
		SET type_id = $1, name = $2, description = $3, mass = $4, radius = $5, axial_tilt = $6, rotation_speed = $7, albedo = $8, orbital_distance_au = $9, has_rings = $10, moon_count = $11, texture_url = $12, rings_texture_url = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING ` + planetColumns

	var updated Planet
	err := scanPlanet(exec.QueryRowContext(ctx, query,
		planet.TypeID,
		planet.Name,
		planet.Description,
		planet.Mass,
		planet.Radius,
		planet.AxialTilt,
		planet.RotationSpeed,
		planet.Albedo,
		planet.OrbitalDistanceAU,
		planet.HasRings,
		planet.MoonCount,
		planet.TextureURL,
		planet.RingsTextureURL,
		planet.ID,
	), &updated)

	if err != nil {
		logger.Error("Failed to update planet", "error", err)
		return nil, fmt.Errorf("failed to update planet: %w", err)
	}

	logger.Debug("Planet updated successfully")
	return &updated, nil
}

func (r *Repository) DeletePlanet(ctx context.Context, id int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "delete_planet",
		"planet_id", id,
	)
	logger.Debug("Deleting planet")

	result, err := exec.ExecContext(ctx, `DELETE FROM planets WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete planet", "error", err)
		return fmt.Errorf("failed to delete planet %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted planet rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no planet found with id %d", id)
	}

	logger.Debug("Planet deleted")
	return nil
}

// ReplaceSurfaceCompounds replaces a planet's surface compound links as a
// set. An empty share list just clears the set. Uses a single JSON-driven
// insert so the whole set lands in one statement.
func (r *Repository) ReplaceSurfaceCompounds(ctx context.Context, planetID int, shares []CompoundShare, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "replace_surface_compounds",
		"planet_id", planetID,
		"count", len(shares),
	)
	logger.Debug("Replacing surface compound links")

	if _, err := exec.ExecContext(ctx, `DELETE FROM planet_compounds WHERE planet_id = $1`, planetID); err != nil {
		logger.Error("Failed to clear surface compound links", "error", err)
		return fmt.Errorf("failed to clear surface compounds: %w", err)
	}

	if len(shares) == 0 {
		return nil
	}

	sharesJSON, err := json.Marshal(shares)
	if err != nil {
		logger.Error("Failed to marshal compound shares", "error", err)
		return fmt.Errorf("failed to marshal compound shares: %w", err)
	}

	query := `
		INSERT INTO planet_compounds (planet_id, compound_id, percentage)
		SELECT $1, (data->>'cid')::integer, (data->>'percentage')::double precision
		FROM json_array_elements($2::json) AS data
	`

	if _, err := exec.ExecContext(ctx, query, planetID, string(sharesJSON)); err != nil {
		logger.Error("Failed to insert surface compound links", "error", err)
		return fmt.Errorf("failed to insert surface compounds: %w", err)
	}

	logger.Debug("Surface compound links replaced")
	return nil
}

func (r *Repository) GetSurfaceCompounds(ctx context.Context, planetID int) ([]PlanetCompound, error) {
	return r.getCompoundLinks(ctx, planetID, "planet_compounds", "get_surface_compounds")
}

func (r *Repository) GetAtmosphereCompounds(ctx context.Context, planetID int) ([]PlanetCompound, error) {
	return r.getCompoundLinks(ctx, planetID, "atmosphere_compounds", "get_atmosphere_compounds")
}

func (r *Repository) getCompoundLinks(ctx context.Context, planetID int, table, operation string) ([]PlanetCompound, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", operation,
		"planet_id", planetID,
	)
	logger.Debug("Getting compound links")

	query := fmt.Sprintf(`
		SELECT l.compound_id, c.name, c.formula, l.percentage
		FROM %s l
		JOIN compounds c ON c.cid = l.compound_id
		WHERE l.planet_id = $1
		ORDER BY l.percentage DESC, l.compound_id
	`, table)

	rows, err := r.db.QueryContext(ctx, query, planetID)
	if err != nil {
		logger.Error("Failed to query compound links", "error", err)
		return nil, fmt.Errorf("failed to query compound links: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var links []PlanetCompound
	for rows.Next() {
		var link PlanetCompound
		if err := rows.Scan(&link.CID, &link.Name, &link.Formula, &link.Percentage); err != nil {
			logger.Error("Failed to scan compound link row", "error", err)
			return nil, fmt.Errorf("failed to scan compound link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating compound links: %w", err)
	}

	logger.Debug("Compound links retrieved", "count", len(links))
	return links, nil
}

func (r *Repository) CreateAtmosphere(ctx context.Context, planetID int, pressureAtm, greenhouseFactor float64, textureURL string, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "create_atmosphere",
		"planet_id", planetID,
	)
	logger.Debug("Creating atmosphere")

	query := `
		INSERT INTO atmospheres (planet_id, pressure_atm, greenhouse_factor, texture_url)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := exec.ExecContext(ctx, query, planetID, pressureAtm, greenhouseFactor, textureURL); err != nil {
		logger.Error("Failed to create atmosphere", "error", err)
		return fmt.Errorf("failed to create atmosphere: %w", err)
	}

	logger.Debug("Atmosphere created")
	return nil
}

func (r *Repository) UpdateAtmosphere(ctx context.Context, atmosphere *Atmosphere, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "update_atmosphere",
		"planet_id", atmosphere.PlanetID,
	)
	logger.Debug("Updating atmosphere")

	query := `
		UPDATE atmospheres
		SET pressure_atm = $1, greenhouse_factor = $2, texture_url = $3
		WHERE planet_id = $4
	`

	result, err := exec.ExecContext(ctx, query, atmosphere.PressureAtm, atmosphere.GreenhouseFactor, atmosphere.TextureURL, atmosphere.PlanetID)
	if err != nil {
		logger.Error("Failed to update atmosphere", "error", err)
		return fmt.Errorf("failed to update atmosphere: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated atmosphere rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no atmosphere found for planet %d", atmosphere.PlanetID)
	}

	logger.Debug("Atmosphere updated")
	return nil
}

func (r *Repository) GetAtmosphere(ctx context.Context, planetID int) (*Atmosphere, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "get_atmosphere",
		"planet_id", planetID,
	)
	logger.Debug("Getting atmosphere")

	query := `
		SELECT planet_id, pressure_atm, greenhouse_factor, texture_url
		FROM atmospheres
		WHERE planet_id = $1
	`

	var atmosphere Atmosphere
	err := r.db.QueryRowContext(ctx, query, planetID).Scan(
		&atmosphere.PlanetID,
		&atmosphere.PressureAtm,
		&atmosphere.GreenhouseFactor,
		&atmosphere.TextureURL,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No atmosphere for planet")
			return nil, nil
		}
		logger.Error("Database error getting atmosphere", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found atmosphere")
	return &atmosphere, nil
}

// DeleteAtmosphere removes a planet's atmosphere and its compound links.
// Deleting an absent atmosphere is a no-op.
func (r *Repository) DeleteAtmosphere(ctx context.Context, planetID int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "delete_atmosphere",
		"planet_id", planetID,
	)
	logger.Debug("Deleting atmosphere")

	if _, err := exec.ExecContext(ctx, `DELETE FROM atmosphere_compounds WHERE planet_id = $1`, planetID); err != nil {
		logger.Error("Failed to delete atmosphere compound links", "error", err)
		return fmt.Errorf("failed to delete atmosphere compounds: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM atmospheres WHERE planet_id = $1`, planetID); err != nil {
		logger.Error("Failed to delete atmosphere", "error", err)
		return fmt.Errorf("failed to delete atmosphere: %w", err)
	}

	logger.Debug("Atmosphere deleted")
	return nil
}

// ReplaceAtmosphereCompounds replaces an atmosphere's compound links as a
// set, mirroring ReplaceSurfaceCompounds.
func (r *Repository) ReplaceAtmosphereCompounds(ctx context.Context, planetID int, shares []CompoundShare, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "replace_atmosphere_compounds",
		"planet_id", planetID,
		"count", len(shares),
	)
	logger.Debug("Replacing atmosphere compound links")

	if _, err := exec.ExecContext(ctx, `DELETE FROM atmosphere_compounds WHERE planet_id = $1`, planetID); err != nil {
		logger.Error("Failed to clear atmosphere compound links", "error", err)
		return fmt.Errorf("failed to clear atmosphere compounds: %w", err)
	}

	if len(shares) == 0 {
		return nil
	}

	sharesJSON, err := json.Marshal(shares)
	if err != nil {
		logger.Error("Failed to marshal compound shares", "error", err)
		return fmt.Errorf("failed to marshal compound shares: %w", err)
	}

	query := `
		INSERT INTO atmosphere_compounds (planet_id, compound_id, percentage)
		SELECT $1, (data->>'cid')::integer, (data->>'percentage')::double precision
		FROM json_array_elements($2::json) AS data
	`

	if _, err := exec.ExecContext(ctx, query, planetID, string(sharesJSON)); err != nil {
		logger.Error("Failed to insert atmosphere compound links", "error", err)
		return fmt.Errorf("failed to insert atmosphere compounds: %w", err)
	}

	logger.Debug("Atmosphere compound links replaced")
	return nil
}
