package planet

import (
	"context"
	"log/slog"
	"strings"

	"orrery-server/internal/compound"
	"orrery-server/internal/planettype"
	"orrery-server/internal/shared/database"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/system"
)

// Store is the persistence surface the service needs. *Repository is the
// production implementation; tests substitute an in-memory fake.
type Store interface {
	CreatePlanet(ctx context.Context, input PlanetInput, tx *database.Tx) (*Planet, error)
	GetPlanetByID(ctx context.Context, id int) (*Planet, error)
	GetPlanetsBySystemID(ctx context.Context, systemID int) ([]Planet, error)
	UpdatePlanet(ctx context.Context, planet *Planet, tx *database.Tx) (*Planet, error)
	DeletePlanet(ctx context.Context, id int, tx *database.Tx) error
	ReplaceSurfaceCompounds(ctx context.Context, planetID int, shares []CompoundShare, tx *database.Tx) error
	ReplaceAtmosphereCompounds(ctx context.Context, planetID int, shares []CompoundShare, tx *database.Tx) error
	GetSurfaceCompounds(ctx context.Context, planetID int) ([]PlanetCompound, error)
	GetAtmosphereCompounds(ctx context.Context, planetID int) ([]PlanetCompound, error)
	CreateAtmosphere(ctx context.Context, planetID int, pressureAtm, greenhouseFactor float64, textureURL string, tx *database.Tx) error
	UpdateAtmosphere(ctx context.Context, atmosphere *Atmosphere, tx *database.Tx) error
	GetAtmosphere(ctx context.Context, planetID int) (*Atmosphere, error)
	DeleteAtmosphere(ctx context.Context, planetID int, tx *database.Tx) error
}

// SystemStore is the slice of the system repository the service uses for
// ownership checks.
type SystemStore interface {
	GetSystemByID(ctx context.Context, id int) (*system.System, error)
}

// TypeStore loads the reference rows physics validation runs against.
type TypeStore interface {
	GetPlanetTypeByID(ctx context.Context, id int) (*planettype.PlanetType, error)
}

// Resolver turns external catalog CIDs into local compound rows before an
// aggregate transaction opens.
type Resolver interface {
	ResolveAll(ctx context.Context, cids []int) ([]compound.Compound, error)
}

// TxRunner runs a function within a transaction, committing on nil and
// rolling back on error. *database.DB is the production implementation.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *database.Tx) error) error
}

// Service is the aggregate writer for planets. Every mutating operation
// runs inside one database transaction covering the planet row, its
// surface compound links, its atmosphere and the atmosphere's compound
// links; nothing partial ever commits.
type Service struct {
	db       TxRunner
	repo     Store
	systems  SystemStore
	types    TypeStore
	resolver Resolver
	logger   *slog.Logger
}

func NewService(db TxRunner, repo Store, systems SystemStore, types TypeStore, resolver Resolver, logger *slog.Logger) *Service {
	logger.Debug("Initializing planet service")

	return &Service{
		db:       db,
		repo:     repo,
		systems:  systems,
		types:    types,
		resolver: resolver,
		logger:   logger,
	}
}

// Get returns a planet with compounds and atmosphere attached. Reads are
// public; no ownership check.
func (s *Service) Get(ctx context.Context, id int) (*Planet, error) {
	planet, err := s.repo.GetPlanetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planet", err)
	}
	if planet == nil {
		return nil, errors.NotFoundf("planet %d not found", id)
	}

	if err := s.attachAggregate(ctx, planet); err != nil {
		return nil, err
	}
	return planet, nil
}

func (s *Service) GetBySystemID(ctx context.Context, systemID int) ([]Planet, error) {
	sys, err := s.systems.GetSystemByID(ctx, systemID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load system", err)
	}
	if sys == nil {
		return nil, errors.NotFoundf("system %d not found", systemID)
	}

	planets, err := s.repo.GetPlanetsBySystemID(ctx, systemID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planets", err)
	}

	for i := range planets {
		if err := s.attachAggregate(ctx, &planets[i]); err != nil {
			return nil, err
		}
	}
	return planets, nil
}

func (s *Service) Create(ctx context.Context, input PlanetInput, actingUserID int) (*Planet, error) {
	logger := s.logger.With("component", "planet_service", "operation", "create", "system_id", input.SystemID, "user_id", actingUserID)
	logger.Debug("Creating planet aggregate")

	if err := s.authorizeSystem(ctx, input.SystemID, actingUserID); err != nil {
		return nil, err
	}

	planetType, err := s.loadType(ctx, input.TypeID)
	if err != nil {
		return nil, err
	}

	candidate := Planet{
		Mass:      input.Mass,
		Radius:    input.Radius,
		HasRings:  input.HasRings,
		MoonCount: input.MoonCount,
	}
	if err := ValidatePhysics(candidate, planetType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.Validation("planet name must not be empty")
	}

	if input.Atmosphere != nil {
		if err := ValidateComposition(input.Atmosphere.Compounds); err != nil {
			return nil, err
		}
	}

	// Compounds resolve before the aggregate transaction opens: an
	// unresolvable CID aborts the create before any planet row exists,
	// and resolved rows are committed independently so the foreign keys
	// below always have a target.
	if err := s.resolveShares(ctx, input.Compounds); err != nil {
		return nil, err
	}
	if input.Atmosphere != nil {
		if err := s.resolveShares(ctx, input.Atmosphere.Compounds); err != nil {
			return nil, err
		}
	}

	var created *Planet
	err = s.db.WithinTx(ctx, func(tx *database.Tx) error {
		planet, err := s.repo.CreatePlanet(ctx, input, tx)
		if err != nil {
			return errors.WrapInternal("failed to create planet", err)
		}

		if err := s.repo.ReplaceSurfaceCompounds(ctx, planet.ID, input.Compounds, tx); err != nil {
			return errors.WrapInternal("failed to link surface compounds", err)
		}

		if input.Atmosphere != nil {
			atm := input.Atmosphere
			if err := s.repo.CreateAtmosphere(ctx, planet.ID, atm.PressureAtm, atm.GreenhouseFactor, atm.TextureURL, tx); err != nil {
				return errors.WrapInternal("failed to create atmosphere", err)
			}
			if err := s.repo.ReplaceAtmosphereCompounds(ctx, planet.ID, atm.Compounds, tx); err != nil {
				return errors.WrapInternal("failed to link atmosphere compounds", err)
			}
		}

		created = planet
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachAggregate(ctx, created); err != nil {
		return nil, err
	}

	logger.Info("Planet aggregate created", "planet_id", created.ID)
	return created, nil
}

// Replace is a full update: the planet row is overwritten, and both
// compound sets and the atmosphere are replaced wholesale.
func (s *Service) Replace(ctx context.Context, id int, input PlanetInput, actingUserID int) (*Planet, error) {
	logger := s.logger.With("component", "planet_service", "operation", "replace", "planet_id", id, "user_id", actingUserID)
	logger.Debug("Replacing planet aggregate")

	current, err := s.repo.GetPlanetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planet", err)
	}
	if current == nil {
		return nil, errors.NotFoundf("planet %d not found", id)
	}

	if err := s.authorizeSystem(ctx, current.SystemID, actingUserID); err != nil {
		return nil, err
	}

	planetType, err := s.loadType(ctx, input.TypeID)
	if err != nil {
		return nil, err
	}

	candidate := Planet{
		Mass:      input.Mass,
		Radius:    input.Radius,
		HasRings:  input.HasRings,
		MoonCount: input.MoonCount,
	}
	if err := ValidatePhysics(candidate, planetType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.Validation("planet name must not be empty")
	}

	if input.Atmosphere != nil {
		if err := ValidateComposition(input.Atmosphere.Compounds); err != nil {
			return nil, err
		}
	}

	if err := s.resolveShares(ctx, input.Compounds); err != nil {
		return nil, err
	}
	if input.Atmosphere != nil {
		if err := s.resolveShares(ctx, input.Atmosphere.Compounds); err != nil {
			return nil, err
		}
	}

	replacement := *current
	replacement.TypeID = input.TypeID
	replacement.Name = input.Name
	replacement.Description = input.Description
	replacement.Mass = input.Mass
	replacement.Radius = input.Radius
	replacement.AxialTilt = input.AxialTilt
	replacement.RotationSpeed = input.RotationSpeed
	replacement.Albedo = input.Albedo
	replacement.OrbitalDistanceAU = input.OrbitalDistanceAU
	replacement.HasRings = input.HasRings
	replacement.MoonCount = input.MoonCount
	replacement.TextureURL = input.TextureURL
	replacement.RingsTextureURL = input.RingsTextureURL

	var updated *Planet
	err = s.db.WithinTx(ctx, func(tx *database.Tx) error {
		planet, err := s.repo.UpdatePlanet(ctx, &replacement, tx)
		if err != nil {
			return errors.WrapInternal("failed to update planet", err)
		}

		if err := s.repo.ReplaceSurfaceCompounds(ctx, planet.ID, input.Compounds, tx); err != nil {
			return errors.WrapInternal("failed to replace surface compounds", err)
		}

		if err := s.repo.DeleteAtmosphere(ctx, planet.ID, tx); err != nil {
			return errors.WrapInternal("failed to remove previous atmosphere", err)
		}

		if input.Atmosphere != nil {
			atm := input.Atmosphere
			if err := s.repo.CreateAtmosphere(ctx, planet.ID, atm.PressureAtm, atm.GreenhouseFactor, atm.TextureURL, tx); err != nil {
				return errors.WrapInternal("failed to create atmosphere", err)
			}
			if err := s.repo.ReplaceAtmosphereCompounds(ctx, planet.ID, atm.Compounds, tx); err != nil {
				return errors.WrapInternal("failed to link atmosphere compounds", err)
			}
		}

		updated = planet
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachAggregate(ctx, updated); err != nil {
		return nil, err
	}

	logger.Info("Planet aggregate replaced")
	return updated, nil
}

// Patch merges supplied fields onto the current planet, validates the
// result and persists the delta. See PlanetPatch for presence semantics.
func (s *Service) Patch(ctx context.Context, id int, patch *PlanetPatch, actingUserID int) (*Planet, error) {
	logger := s.logger.With("component", "planet_service", "operation", "patch", "planet_id", id, "user_id", actingUserID)
	logger.Debug("Patching planet aggregate")

	if patch.IsEmpty() {
		return nil, errors.Validation("empty update payload, nothing to update")
	}

	current, err := s.repo.GetPlanetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planet", err)
	}
	if current == nil {
		return nil, errors.NotFoundf("planet %d not found", id)
	}

	if err := s.authorizeSystem(ctx, current.SystemID, actingUserID); err != nil {
		return nil, err
	}

	merged := mergePlanet(*current, patch)

	planetType, err := s.loadType(ctx, merged.TypeID)
	if err != nil {
		return nil, err
	}
	if err := ValidatePhysics(merged, planetType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(merged.Name) == "" {
		return nil, errors.Validation("planet name must not be empty")
	}

	if patch.CompoundsSet {
		if err := s.resolveShares(ctx, patch.Compounds); err != nil {
			return nil, err
		}
	}

	existingAtm, err := s.repo.GetAtmosphere(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load atmosphere", err)
	}

	var (
		deleteAtm     bool
		createAtm     *Atmosphere
		updateAtm     *Atmosphere
		atmShares     []CompoundShare
		replaceShares bool
	)

	if patch.AtmosphereSet {
		switch {
		case patch.Atmosphere == nil:
			// atmosphere: null removes the whole extension
			deleteAtm = true

		case existingAtm == nil:
			if !patch.Atmosphere.IsComplete() {
				return nil, errors.Validation("planet has no atmosphere; a complete atmosphere (pressure_atm, greenhouse_factor, texture_url, compounds) is required to add one")
			}
			if err := ValidateComposition(patch.Atmosphere.Compounds); err != nil {
				return nil, err
			}
			if err := s.resolveShares(ctx, patch.Atmosphere.Compounds); err != nil {
				return nil, err
			}
			createAtm = &Atmosphere{
				PlanetID:         id,
				PressureAtm:      *patch.Atmosphere.PressureAtm,
				GreenhouseFactor: *patch.Atmosphere.GreenhouseFactor,
				TextureURL:       *patch.Atmosphere.TextureURL,
			}
			atmShares = patch.Atmosphere.Compounds
			replaceShares = true

		default:
			mergedAtm := mergeAtmosphere(*existingAtm, patch.Atmosphere)
			if patch.Atmosphere.CompoundsSet {
				if err := ValidateComposition(patch.Atmosphere.Compounds); err != nil {
					return nil, err
				}
				if err := s.resolveShares(ctx, patch.Atmosphere.Compounds); err != nil {
					return nil, err
				}
				atmShares = patch.Atmosphere.Compounds
				replaceShares = true
			}
			updateAtm = &mergedAtm
		}
	}

	err = s.db.WithinTx(ctx, func(tx *database.Tx) error {
		if _, err := s.repo.UpdatePlanet(ctx, &merged, tx); err != nil {
			return errors.WrapInternal("failed to update planet", err)
		}

		if patch.CompoundsSet {
			if err := s.repo.ReplaceSurfaceCompounds(ctx, id, patch.Compounds, tx); err != nil {
				return errors.WrapInternal("failed to replace surface compounds", err)
			}
		}

		switch {
		case deleteAtm:
			if err := s.repo.DeleteAtmosphere(ctx, id, tx); err != nil {
				return errors.WrapInternal("failed to delete atmosphere", err)
			}
		case createAtm != nil:
			if err := s.repo.CreateAtmosphere(ctx, id, createAtm.PressureAtm, createAtm.GreenhouseFactor, createAtm.TextureURL, tx); err != nil {
				return errors.WrapInternal("failed to create atmosphere", err)
			}
		case updateAtm != nil:
			if err := s.repo.UpdateAtmosphere(ctx, updateAtm, tx); err != nil {
				return errors.WrapInternal("failed to update atmosphere", err)
			}
		}

		if replaceShares {
			if err := s.repo.ReplaceAtmosphereCompounds(ctx, id, atmShares, tx); err != nil {
				return errors.WrapInternal("failed to replace atmosphere compounds", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.repo.GetPlanetByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to reload planet", err)
	}
	if err := s.attachAggregate(ctx, result); err != nil {
		return nil, err
	}

	logger.Info("Planet aggregate patched")
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id int, actingUserID int) error {
	logger := s.logger.With("component", "planet_service", "operation", "delete", "planet_id", id, "user_id", actingUserID)
	logger.Debug("Deleting planet aggregate")

	current, err := s.repo.GetPlanetByID(ctx, id)
	if err != nil {
		return errors.WrapInternal("failed to load planet", err)
	}
	if current == nil {
		return errors.NotFoundf("planet %d not found", id)
	}

	if err := s.authorizeSystem(ctx, current.SystemID, actingUserID); err != nil {
		return err
	}

	err = s.db.WithinTx(ctx, func(tx *database.Tx) error {
		if err := s.repo.DeleteAtmosphere(ctx, id, tx); err != nil {
			return errors.WrapInternal("failed to delete atmosphere", err)
		}

		if err := s.repo.ReplaceSurfaceCompounds(ctx, id, nil, tx); err != nil {
			return errors.WrapInternal("failed to delete surface compounds", err)
		}

		if err := s.repo.DeletePlanet(ctx, id, tx); err != nil {
			return errors.WrapInternal("failed to delete planet", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Planet aggregate deleted")
	return nil
}

func (s *Service) authorizeSystem(ctx context.Context, systemID, actingUserID int) error {
	sys, err := s.systems.GetSystemByID(ctx, systemID)
	if err != nil {
		return errors.WrapInternal("failed to load system", err)
	}
	if sys == nil {
		return errors.NotFoundf("system %d not found", systemID)
	}
	return system.AuthorizeOwner(actingUserID, sys)
}

func (s *Service) loadType(ctx context.Context, typeID int) (*planettype.PlanetType, error) {
	planetType, err := s.types.GetPlanetTypeByID(ctx, typeID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planet type", err)
	}
	if planetType == nil {
		return nil, errors.NotFoundf("planet type %d not found", typeID)
	}
	return planetType, nil
}

func (s *Service) resolveShares(ctx context.Context, shares []CompoundShare) error {
	if len(shares) == 0 {
		return nil
	}

	cids := make([]int, 0, len(shares))
	for _, share := range shares {
		cids = append(cids, share.CID)
	}

	_, err := s.resolver.ResolveAll(ctx, cids)
	return err
}

func (s *Service) attachAggregate(ctx context.Context, planet *Planet) error {
	compounds, err := s.repo.GetSurfaceCompounds(ctx, planet.ID)
	if err != nil {
		return errors.WrapInternal("failed to load surface compounds", err)
	}
	if compounds == nil {
		compounds = []PlanetCompound{}
	}
	planet.Compounds = compounds

	atmosphere, err := s.repo.GetAtmosphere(ctx, planet.ID)
	if err != nil {
		return errors.WrapInternal("failed to load atmosphere", err)
	}
	if atmosphere != nil {
		atmCompounds, err := s.repo.GetAtmosphereCompounds(ctx, planet.ID)
		if err != nil {
			return errors.WrapInternal("failed to load atmosphere compounds", err)
		}
		if atmCompounds == nil {
			atmCompounds = []PlanetCompound{}
		}
		atmosphere.Compounds = atmCompounds
	}
	planet.Atmosphere = atmosphere

	return nil
}
