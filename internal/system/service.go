package system

import (
	"context"
	"log/slog"
	"strings"

	"orrery-server/internal/shared/database"
	"orrery-server/internal/shared/errors"
)

// Store is the persistence surface the service needs. *Repository is the
// production implementation; tests substitute an in-memory fake.
type Store interface {
	GetAllSystems(ctx context.Context) ([]System, error)
	GetSystemByID(ctx context.Context, id int) (*System, error)
	GetStarBySystemID(ctx context.Context, systemID int) (*Star, error)
	CreateSystem(ctx context.Context, input SystemInput, userID int, tx *database.Tx) (*System, error)
	CreateStar(ctx context.Context, systemID int, input StarInput, tx *database.Tx) (*Star, error)
	UpdateSystem(ctx context.Context, sys *System) (*System, error)
	UpdateStar(ctx context.Context, star *Star) (*Star, error)
	DeletePlanetAggregatesBySystemID(ctx context.Context, systemID int, tx *database.Tx) error
	DeleteStarBySystemID(ctx context.Context, systemID int, tx *database.Tx) error
	DeleteSystem(ctx context.Context, id int, tx *database.Tx) error
}

// TxRunner runs a function within a transaction, committing on nil and
// rolling back on error. *database.DB is the production implementation.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *database.Tx) error) error
}

// Service is the aggregate writer for planetary systems. A system and its
// star form one aggregate: both rows are written or neither is.
type Service struct {
	db     TxRunner
	repo   Store
	logger *slog.Logger
}

func NewService(db TxRunner, repo Store, logger *slog.Logger) *Service {
	logger.Debug("Initializing system service")

	return &Service{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]System, error) {
	systems, err := s.repo.GetAllSystems(ctx)
	if err != nil {
		return nil, errors.WrapInternal("failed to list systems", err)
	}
	return systems, nil
}

// Get returns a system with its star attached. Visibility is global:
// no ownership check on reads.
func (s *Service) Get(ctx context.Context, id int) (*System, error) {
	sys, err := s.repo.GetSystemByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load system", err)
	}
	if sys == nil {
		return nil, errors.NotFoundf("system %d not found", id)
	}

	star, err := s.repo.GetStarBySystemID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load star", err)
	}
	sys.Star = star

	return sys, nil
}

func (s *Service) Create(ctx context.Context, input SystemInput, actingUserID int) (*System, error) {
	logger := s.logger.With("component", "system_service", "operation", "create", "user_id", actingUserID)
	logger.Debug("Creating system aggregate")

	if err := validateSystemInput(input); err != nil {
		return nil, err
	}

	var created *System
	err := s.db.WithinTx(ctx, func(tx *database.Tx) error {
		sys, err := s.repo.CreateSystem(ctx, input, actingUserID, tx)
		if err != nil {
			return errors.WrapInternal("failed to create system", err)
		}

		star, err := s.repo.CreateStar(ctx, sys.ID, input.Star, tx)
		if err != nil {
			return errors.WrapInternal("failed to create star", err)
		}

		sys.Star = star
		created = sys
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("System aggregate created", "system_id", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int, patch SystemPatch, actingUserID int) (*System, error) {
	logger := s.logger.With("component", "system_service", "operation", "update", "system_id", id, "user_id", actingUserID)
	logger.Debug("Updating system")

	if patch.IsEmpty() {
		return nil, errors.Validation("empty update payload, nothing to update")
	}

	sys, err := s.repo.GetSystemByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load system", err)
	}
	if sys == nil {
		return nil, errors.NotFoundf("system %d not found", id)
	}

	if err := AuthorizeOwner(actingUserID, sys); err != nil {
		return nil, err
	}

	merged := *sys
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.DistanceLY != nil {
		merged.DistanceLY = *patch.DistanceLY
	}
	if patch.ThumbnailURLSet {
		// thumbnail_url: null clears the thumbnail
		merged.ThumbnailURL = patch.ThumbnailURL
	}

	if strings.TrimSpace(merged.Name) == "" {
		return nil, errors.Validation("system name must not be empty")
	}
	if merged.DistanceLY < 0 {
		return nil, errors.Validation("distance_ly must not be negative")
	}

	updated, err := s.repo.UpdateSystem(ctx, &merged)
	if err != nil {
		return nil, errors.WrapInternal("failed to update system", err)
	}

	star, err := s.repo.GetStarBySystemID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load star", err)
	}
	updated.Star = star

	logger.Info("System updated")
	return updated, nil
}

// UpdateStar edits the star through its own path; the star never changes
// through the system update call.
func (s *Service) UpdateStar(ctx context.Context, systemID int, patch StarPatch, actingUserID int) (*Star, error) {
	logger := s.logger.With("component", "system_service", "operation", "update_star", "system_id", systemID, "user_id", actingUserID)
	logger.Debug("Updating star")

	if patch.IsEmpty() {
		return nil, errors.Validation("empty update payload, nothing to update")
	}

	sys, err := s.repo.GetSystemByID(ctx, systemID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load system", err)
	}
	if sys == nil {
		return nil, errors.NotFoundf("system %d not found", systemID)
	}

	if err := AuthorizeOwner(actingUserID, sys); err != nil {
		return nil, err
	}

	star, err := s.repo.GetStarBySystemID(ctx, systemID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load star", err)
	}
	if star == nil {
		return nil, errors.WrapInternal("system has no star", nil)
	}

	merged := *star
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.MassSolar != nil {
		merged.MassSolar = *patch.MassSolar
	}
	if patch.RadiusSolar != nil {
		merged.RadiusSolar = *patch.RadiusSolar
	}
	if patch.ThumbnailURLSet {
		merged.ThumbnailURL = patch.ThumbnailURL
	}

	if strings.TrimSpace(merged.Name) == "" {
		return nil, errors.Validation("star name must not be empty")
	}
	if merged.MassSolar <= 0 {
		return nil, errors.Validation("mass_solar must be positive")
	}
	if merged.RadiusSolar <= 0 {
		return nil, errors.Validation("radius_solar must be positive")
	}

	updated, err := s.repo.UpdateStar(ctx, &merged)
	if err != nil {
		return nil, errors.WrapInternal("failed to update star", err)
	}

	logger.Info("Star updated")
	return updated, nil
}

// Delete removes the whole aggregate in one transaction: planet aggregates
// first, then the star, then the system row. Any failure along the way,
// including a failing star delete, rolls everything back and leaves the
// aggregate exactly as it was.
func (s *Service) Delete(ctx context.Context, id int, actingUserID int) error {
	logger := s.logger.With("component", "system_service", "operation", "delete", "system_id", id, "user_id", actingUserID)
	logger.Debug("Deleting system aggregate")

	sys, err := s.repo.GetSystemByID(ctx, id)
	if err != nil {
		return errors.WrapInternal("failed to load system", err)
	}
	if sys == nil {
		return errors.NotFoundf("system %d not found", id)
	}

	if err := AuthorizeOwner(actingUserID, sys); err != nil {
		return err
	}

	err = s.db.WithinTx(ctx, func(tx *database.Tx) error {
		if err := s.repo.DeletePlanetAggregatesBySystemID(ctx, id, tx); err != nil {
			return errors.WrapInternal("failed to delete system planets", err)
		}

		if err := s.repo.DeleteStarBySystemID(ctx, id, tx); err != nil {
			return errors.WrapInternal("failed to delete star", err)
		}

		if err := s.repo.DeleteSystem(ctx, id, tx); err != nil {
			return errors.WrapInternal("failed to delete system", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("System aggregate deleted")
	return nil
}

func validateSystemInput(input SystemInput) error {
	var violations []string

	if strings.TrimSpace(input.Name) == "" {
		violations = append(violations, "name must not be empty")
	}
	if input.DistanceLY < 0 {
		violations = append(violations, "distance_ly must not be negative")
	}
	if strings.TrimSpace(input.Star.Name) == "" {
		violations = append(violations, "star.name must not be empty")
	}
	if input.Star.MassSolar <= 0 {
		violations = append(violations, "star.mass_solar must be positive")
	}
	if input.Star.RadiusSolar <= 0 {
		violations = append(violations, "star.radius_solar must be positive")
	}

	if len(violations) > 0 {
		return errors.Validationf("invalid system: %s", strings.Join(violations, "; "))
	}
	return nil
}
