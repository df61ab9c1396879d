package compound

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"orrery-server/internal/shared/database"

	"github.com/lib/pq"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing compound repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetCompound(ctx context.Context, cid int) (*Compound, error) {
	logger := r.logger.With(
		"component", "compound_repository",
		"operation", "get_compound",
		"cid", cid,
	)
	logger.Debug("Getting compound by CID")

	query := `
		SELECT cid, name, formula, created_at
		FROM compounds
		WHERE cid = $1
	`

	var compound Compound
	err := r.db.QueryRowContext(ctx, query, cid).Scan(
		&compound.CID,
		&compound.Name,
		&compound.Formula,
		&compound.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No local compound record for CID")
			return nil, nil
		}
		logger.Error("Database error getting compound", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found local compound record", "name", compound.Name)
	return &compound, nil
}

// InsertCompoundIfAbsent inserts a compound row unless one already exists.
// Concurrent inserts of the same CID are resolved by the database: the
// loser's statement is a no-op and the caller re-reads the winning row.
func (r *Repository) InsertCompoundIfAbsent(ctx context.Context, cid int, name, formula string) error {
	logger := r.logger.With(
		"component", "compound_repository",
		"operation", "insert_if_absent",
		"cid", cid,
	)
	logger.Debug("Inserting compound if absent")

	query := `
		INSERT INTO compounds (cid, name, formula)
		VALUES ($1, $2, $3)
		ON CONFLICT (cid) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, cid, name, formula); err != nil {
		logger.Error("Failed to insert compound", "error", err)
		return fmt.Errorf("failed to insert compound: %w", err)
	}

	return nil
}

func (r *Repository) GetCompoundsByCIDs(ctx context.Context, cids []int) ([]Compound, error) {
	logger := r.logger.With(
		"component", "compound_repository",
		"operation", "get_by_cids",
		"count", len(cids),
	)
	logger.Debug("Getting compounds by CIDs")

	if len(cids) == 0 {
		return []Compound{}, nil
	}

	query := `
		SELECT cid, name, formula, created_at
		FROM compounds
		WHERE cid = ANY($1)
		ORDER BY cid
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(cids))
	if err != nil {
		logger.Error("Failed to query compounds", "error", err)
		return nil, fmt.Errorf("failed to query compounds: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var compounds []Compound
	for rows.Next() {
		var compound Compound
		err := rows.Scan(
			&compound.CID,
			&compound.Name,
			&compound.Formula,
			&compound.CreatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan compound row", "error", err)
			return nil, fmt.Errorf("failed to scan compound: %w", err)
		}
		compounds = append(compounds, compound)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating compounds: %w", err)
	}

	logger.Debug("Compounds retrieved", "count", len(compounds))
	return compounds, nil
}
