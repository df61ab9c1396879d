package planet

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"orrery-server/internal/compound"
	"orrery-server/internal/planettype"
	"orrery-server/internal/shared/database"
	"orrery-server/internal/shared/errors"
	"orrery-server/internal/system"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlanetStore keeps the aggregate in memory. The paired fakeTxRunner
// snapshots it before a transaction and restores it when the transaction
// function fails, mirroring the commit/rollback contract of WithinTx.
type fakePlanetStore struct {
	nextID           int
	planets          map[int]Planet
	surface          map[int][]CompoundShare
	atmospheres      map[int]Atmosphere
	atmosphereShares map[int][]CompoundShare

	failSurfaceLink bool
}

func newFakePlanetStore() *fakePlanetStore {
	return &fakePlanetStore{
		nextID:           1,
		planets:          map[int]Planet{},
		surface:          map[int][]CompoundShare{},
		atmospheres:      map[int]Atmosphere{},
		atmosphereShares: map[int][]CompoundShare{},
	}
}

func (f *fakePlanetStore) clone() *fakePlanetStore {
	snap := newFakePlanetStore()
	snap.nextID = f.nextID
	snap.failSurfaceLink = f.failSurfaceLink
	for id, p := range f.planets {
		snap.planets[id] = p
	}
	for id, s := range f.surface {
		snap.surface[id] = append([]CompoundShare(nil), s...)
	}
	for id, a := range f.atmospheres {
		snap.atmospheres[id] = a
	}
	for id, s := range f.atmosphereShares {
		snap.atmosphereShares[id] = append([]CompoundShare(nil), s...)
	}
	return snap
}

func (f *fakePlanetStore) CreatePlanet(_ context.Context, input PlanetInput, _ *database.Tx) (*Planet, error) {
	planet := Planet{
		ID:                f.nextID,
		SystemID:          input.SystemID,
		TypeID:            input.TypeID,
		Name:              input.Name,
		Description:       input.Description,
		Mass:              input.Mass,
		Radius:            input.Radius,
		AxialTilt:         input.AxialTilt,
		RotationSpeed:     input.RotationSpeed,
		Albedo:            input.Albedo,
		OrbitalDistanceAU: input.OrbitalDistanceAU,
		HasRings:          input.HasRings,
		MoonCount:         input.MoonCount,
		TextureURL:        input.TextureURL,
		RingsTextureURL:   input.RingsTextureURL,
	}
	f.nextID++
	f.planets[planet.ID] = planet
	copied := planet
	return &copied, nil
}

func (f *fakePlanetStore) GetPlanetByID(_ context.Context, id int) (*Planet, error) {
	planet, ok := f.planets[id]
	if !ok {
		return nil, nil
	}
	copied := planet
	return &copied, nil
}

func (f *fakePlanetStore) GetPlanetsBySystemID(_ context.Context, systemID int) ([]Planet, error) {
	var planets []Planet
	for _, p := range f.planets {
		if p.SystemID == systemID {
			planets = append(planets, p)
		}
	}
	return planets, nil
}

func (f *fakePlanetStore) UpdatePlanet(_ context.Context, planet *Planet, _ *database.Tx) (*Planet, error) {
	f.planets[planet.ID] = *planet
	copied := *planet
	return &copied, nil
}

func (f *fakePlanetStore) DeletePlanet(_ context.Context, id int, _ *database.Tx) error {
	if _, ok := f.planets[id]; !ok {
		return errors.NotFoundf("planet %d not found", id)
	}
	delete(f.planets, id)
	return nil
}

func (f *fakePlanetStore) ReplaceSurfaceCompounds(_ context.Context, planetID int, shares []CompoundShare, _ *database.Tx) error {
	if f.failSurfaceLink {
		return assert.AnError
	}
	if len(shares) == 0 {
		delete(f.surface, planetID)
		return nil
	}
	f.surface[planetID] = append([]CompoundShare(nil), shares...)
	return nil
}

func (f *fakePlanetStore) ReplaceAtmosphereCompounds(_ context.Context, planetID int, shares []CompoundShare, _ *database.Tx) error {
	if len(shares) == 0 {
		delete(f.atmosphereShares, planetID)
		return nil
	}
	f.atmosphereShares[planetID] = append([]CompoundShare(nil), shares...)
	return nil
}

func sharesToCompounds(shares []CompoundShare) []PlanetCompound {
	compounds := make([]PlanetCompound, 0, len(shares))
	for _, share := range shares {
		compounds = append(compounds, PlanetCompound{CID: share.CID, Percentage: share.Percentage})
	}
	return compounds
}

func (f *fakePlanetStore) GetSurfaceCompounds(_ context.Context, planetID int) ([]PlanetCompound, error) {
	return sharesToCompounds(f.surface[planetID]), nil
}

func (f *fakePlanetStore) GetAtmosphereCompounds(_ context.Context, planetID int) ([]PlanetCompound, error) {
	return sharesToCompounds(f.atmosphereShares[planetID]), nil
}

func (f *fakePlanetStore) CreateAtmosphere(_ context.Context, planetID int, pressureAtm, greenhouseFactor float64, textureURL string, _ *database.Tx) error {
	f.atmospheres[planetID] = Atmosphere{
		PlanetID:         planetID,
		PressureAtm:      pressureAtm,
		GreenhouseFactor: greenhouseFactor,
		TextureURL:       textureURL,
	}
	return nil
}

func (f *fakePlanetStore) UpdateAtmosphere(_ context.Context, atmosphere *Atmosphere, _ *database.Tx) error {
	if _, ok := f.atmospheres[atmosphere.PlanetID]; !ok {
		return errors.NotFoundf("atmosphere for planet %d not found", atmosphere.PlanetID)
	}
	f.atmospheres[atmosphere.PlanetID] = *atmosphere
	return nil
}

func (f *fakePlanetStore) GetAtmosphere(_ context.Context, planetID int) (*Atmosphere, error) {
	atmosphere, ok := f.atmospheres[planetID]
	if !ok {
		return nil, nil
	}
	copied := atmosphere
	return &copied, nil
}

func (f *fakePlanetStore) DeleteAtmosphere(_ context.Context, planetID int, _ *database.Tx) error {
	delete(f.atmospheres, planetID)
	delete(f.atmosphereShares, planetID)
	return nil
}

type fakeTxRunner struct {
	store *fakePlanetStore
}

func (r *fakeTxRunner) WithinTx(_ context.Context, fn func(tx *database.Tx) error) error {
	snap := r.store.clone()
	if err := fn(nil); err != nil {
		*r.store = *snap
		return err
	}
	return nil
}

type fakeSystems struct {
	systems map[int]*system.System
}

func (f *fakeSystems) GetSystemByID(_ context.Context, id int) (*system.System, error) {
	return f.systems[id], nil
}

type fakeTypes struct {
	types map[int]*planettype.PlanetType
}

func (f *fakeTypes) GetPlanetTypeByID(_ context.Context, id int) (*planettype.PlanetType, error) {
	return f.types[id], nil
}

type fakeShareResolver struct {
	known map[int]struct{}
	calls int
}

func (f *fakeShareResolver) ResolveAll(_ context.Context, cids []int) ([]compound.Compound, error) {
	f.calls++
	resolved := make([]compound.Compound, 0, len(cids))
	for _, cid := range cids {
		if _, ok := f.known[cid]; !ok {
			return nil, errors.NotFoundf("compound %d not found in catalog", cid)
		}
		resolved = append(resolved, compound.Compound{CID: cid})
	}
	return resolved, nil
}

const (
	ownerID = 42
	otherID = 7
)

type planetFixture struct {
	store    *fakePlanetStore
	resolver *fakeShareResolver
	service  *Service
}

func newPlanetFixture() *planetFixture {
	store := newFakePlanetStore()
	resolver := &fakeShareResolver{known: map[int]struct{}{962: {}, 280: {}}}
	systems := &fakeSystems{systems: map[int]*system.System{
		1: {ID: 1, Name: "Trappist-1", UserID: ownerID},
	}}
	types := &fakeTypes{types: map[int]*planettype.PlanetType{
		1: {ID: 1, Name: "Terrestrial", MinMass: 0.1, MaxMass: 10, MinRadius: 0.1, MaxRadius: 3, HasRings: true, HasSurface: true, MaxMoons: 5},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &planetFixture{
		store:    store,
		resolver: resolver,
		service:  NewService(&fakeTxRunner{store: store}, store, systems, types, resolver, logger),
	}
}

func (fx *planetFixture) seedPlanet(t *testing.T, withAtmosphere bool) int {
	t.Helper()

	input := validPlanetInput()
	if withAtmosphere {
		input.Atmosphere = &AtmosphereInput{
			PressureAtm:      1,
			GreenhouseFactor: 0.3,
			TextureURL:       "atm.png",
			Compounds:        []CompoundShare{{CID: 280, Percentage: 95}},
		}
	}

	created, err := fx.service.Create(context.Background(), input, ownerID)
	require.NoError(t, err)
	return created.ID
}

func validPlanetInput() PlanetInput {
	return PlanetInput{
		SystemID:          1,
		TypeID:            1,
		Name:              "Aurelia",
		Mass:              1,
		Radius:            1,
		OrbitalDistanceAU: 0.8,
		TextureURL:        "aurelia.png",
		Compounds:         []CompoundShare{{CID: 962, Percentage: 70}},
	}
}

func TestServiceCreatePersistsFullAggregate(t *testing.T) {
	fx := newPlanetFixture()

	input := validPlanetInput()
	input.Atmosphere = &AtmosphereInput{
		PressureAtm:      1.2,
		GreenhouseFactor: 0.4,
		TextureURL:       "atm.png",
		Compounds:        []CompoundShare{{CID: 280, Percentage: 95}},
	}

	created, err := fx.service.Create(context.Background(), input, ownerID)
	require.NoError(t, err)

	assert.Len(t, fx.store.planets, 1)
	assert.Len(t, fx.store.surface[created.ID], 1)
	require.NotNil(t, created.Atmosphere)
	assert.Equal(t, 1.2, created.Atmosphere.PressureAtm)
	assert.Len(t, created.Atmosphere.Compounds, 1)
	assert.Len(t, created.Compounds, 1)
}

func TestServiceCreateUnresolvableCompoundWritesNothing(t *testing.T) {
	fx := newPlanetFixture()

	input := validPlanetInput()
	input.Compounds = []CompoundShare{{CID: 999999, Percentage: 50}}

	_, err := fx.service.Create(context.Background(), input, ownerID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	assert.Empty(t, fx.store.planets)
	assert.Empty(t, fx.store.surface)
	assert.Empty(t, fx.store.atmospheres)
	assert.Empty(t, fx.store.atmosphereShares)
}

func TestServiceCreateUnresolvableAtmosphereCompoundWritesNothing(t *testing.T) {
	fx := newPlanetFixture()

	input := validPlanetInput()
	input.Atmosphere = &AtmosphereInput{
		PressureAtm:      1,
		GreenhouseFactor: 0.3,
		TextureURL:       "atm.png",
		Compounds:        []CompoundShare{{CID: 999999, Percentage: 95}},
	}

	_, err := fx.service.Create(context.Background(), input, ownerID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	assert.Empty(t, fx.store.planets)
	assert.Empty(t, fx.store.atmospheres)
}

func TestServiceCreateLinkFailureRollsBackPlanetRow(t *testing.T) {
	fx := newPlanetFixture()
	fx.store.failSurfaceLink = true

	_, err := fx.service.Create(context.Background(), validPlanetInput(), ownerID)
	require.Error(t, err)

	assert.Empty(t, fx.store.planets)
	assert.Empty(t, fx.store.surface)
}

func TestServiceCreateForbiddenForNonOwner(t *testing.T) {
	fx := newPlanetFixture()

	_, err := fx.service.Create(context.Background(), validPlanetInput(), otherID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetType(err))

	assert.Empty(t, fx.store.planets)
	assert.Zero(t, fx.resolver.calls)
}

func TestServicePatchAtmosphereNullRemovesAtmosphere(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, true)

	patch := decodePatch(t, `{"atmosphere": null}`)
	patched, err := fx.service.Patch(context.Background(), id, patch, ownerID)
	require.NoError(t, err)

	assert.Nil(t, patched.Atmosphere)
	assert.Empty(t, fx.store.atmospheres)
	assert.Empty(t, fx.store.atmosphereShares)
}

func TestServicePatchIncompleteAtmosphereAgainstNoneRejected(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, false)

	patch := decodePatch(t, `{"atmosphere": {"pressure_atm": 2}}`)
	_, err := fx.service.Patch(context.Background(), id, patch, ownerID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	assert.Empty(t, fx.store.atmospheres)
}

func TestServicePatchCompleteAtmosphereAddsOne(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, false)

	patch := decodePatch(t, `{"atmosphere": {"pressure_atm": 2, "greenhouse_factor": 0.5, "texture_url": "atm.png", "compounds": [{"cid": 280, "percentage": 90}]}}`)
	patched, err := fx.service.Patch(context.Background(), id, patch, ownerID)
	require.NoError(t, err)

	require.NotNil(t, patched.Atmosphere)
	assert.Equal(t, 2.0, patched.Atmosphere.PressureAtm)
	assert.Len(t, patched.Atmosphere.Compounds, 1)
}

func TestServicePatchMergesExistingAtmosphere(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, true)

	patch := decodePatch(t, `{"atmosphere": {"pressure_atm": 3.5}}`)
	patched, err := fx.service.Patch(context.Background(), id, patch, ownerID)
	require.NoError(t, err)

	require.NotNil(t, patched.Atmosphere)
	assert.Equal(t, 3.5, patched.Atmosphere.PressureAtm)
	assert.Equal(t, 0.3, patched.Atmosphere.GreenhouseFactor)
	assert.Len(t, patched.Atmosphere.Compounds, 1)
}

func TestServicePatchEmptyCompoundsClearSurface(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, false)
	require.Len(t, fx.store.surface[id], 1)

	patch := decodePatch(t, `{"compounds": []}`)
	patched, err := fx.service.Patch(context.Background(), id, patch, ownerID)
	require.NoError(t, err)

	assert.Empty(t, patched.Compounds)
	assert.Empty(t, fx.store.surface)
}

func TestServiceReplaceSwapsAtmosphere(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, true)

	input := validPlanetInput()
	input.Name = "Aurelia II"

	replaced, err := fx.service.Replace(context.Background(), id, input, ownerID)
	require.NoError(t, err)

	assert.Equal(t, "Aurelia II", replaced.Name)
	assert.Nil(t, replaced.Atmosphere)
	assert.Empty(t, fx.store.atmospheres)
}

func TestServiceDeleteRemovesWholeAggregate(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, true)

	require.NoError(t, fx.service.Delete(context.Background(), id, ownerID))

	assert.Empty(t, fx.store.planets)
	assert.Empty(t, fx.store.surface)
	assert.Empty(t, fx.store.atmospheres)
	assert.Empty(t, fx.store.atmosphereShares)
}

func TestServiceDeleteForbiddenForNonOwner(t *testing.T) {
	fx := newPlanetFixture()
	id := fx.seedPlanet(t, true)

	err := fx.service.Delete(context.Background(), id, otherID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetType(err))

	assert.Len(t, fx.store.planets, 1)
	assert.Len(t, fx.store.atmospheres, 1)
}
