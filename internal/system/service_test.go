package system

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"orrery-server/internal/shared/database"
	"orrery-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() SystemInput {
	return SystemInput{
		Name:       "Trappist-1",
		DistanceLY: 40.7,
		Star: StarInput{
			Name:        "Trappist-1a",
			MassSolar:   0.09,
			RadiusSolar: 0.12,
		},
	}
}

func TestValidateSystemInputAccepted(t *testing.T) {
	require.NoError(t, validateSystemInput(validInput()))
}

func TestValidateSystemInputCollectsViolations(t *testing.T) {
	input := validInput()
	input.Name = "  "
	input.DistanceLY = -1
	input.Star.MassSolar = 0

	err := validateSystemInput(input)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "distance_ly")
	assert.Contains(t, err.Error(), "star.mass_solar")
}

func TestValidateSystemInputRequiresStar(t *testing.T) {
	input := validInput()
	input.Star = StarInput{}

	err := validateSystemInput(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "star.name")
	assert.Contains(t, err.Error(), "star.radius_solar")
}

// fakeSystemStore keeps the aggregate in memory. The paired fakeTxRunner
// snapshots it before a transaction and restores it when the transaction
// function fails, mirroring the commit/rollback contract of WithinTx.
type fakeSystemStore struct {
	nextSystemID int
	nextStarID   int
	systems      map[int]System
	stars        map[int]Star // keyed by system ID
	planetRows   map[int]int  // planet aggregate rows per system

	failStarCreate bool
}

func newFakeSystemStore() *fakeSystemStore {
	return &fakeSystemStore{
		nextSystemID: 1,
		nextStarID:   1,
		systems:      map[int]System{},
		stars:        map[int]Star{},
		planetRows:   map[int]int{},
	}
}

func (f *fakeSystemStore) clone() *fakeSystemStore {
	snap := newFakeSystemStore()
	snap.nextSystemID = f.nextSystemID
	snap.nextStarID = f.nextStarID
	snap.failStarCreate = f.failStarCreate
	for id, s := range f.systems {
		snap.systems[id] = s
	}
	for id, s := range f.stars {
		snap.stars[id] = s
	}
	for id, n := range f.planetRows {
		snap.planetRows[id] = n
	}
	return snap
}

func (f *fakeSystemStore) GetAllSystems(_ context.Context) ([]System, error) {
	var systems []System
	for _, s := range f.systems {
		systems = append(systems, s)
	}
	return systems, nil
}

func (f *fakeSystemStore) GetSystemByID(_ context.Context, id int) (*System, error) {
	sys, ok := f.systems[id]
	if !ok {
		return nil, nil
	}
	copied := sys
	return &copied, nil
}

func (f *fakeSystemStore) GetStarBySystemID(_ context.Context, systemID int) (*Star, error) {
	star, ok := f.stars[systemID]
	if !ok {
		return nil, nil
	}
	copied := star
	return &copied, nil
}

func (f *fakeSystemStore) CreateSystem(_ context.Context, input SystemInput, userID int, _ *database.Tx) (*System, error) {
	sys := System{
		ID:           f.nextSystemID,
		Name:         input.Name,
		Description:  input.Description,
		DistanceLY:   input.DistanceLY,
		ThumbnailURL: input.ThumbnailURL,
		UserID:       userID,
	}
	f.nextSystemID++
	f.systems[sys.ID] = sys
	copied := sys
	return &copied, nil
}

func (f *fakeSystemStore) CreateStar(_ context.Context, systemID int, input StarInput, _ *database.Tx) (*Star, error) {
	if f.failStarCreate {
		return nil, assert.AnError
	}
	star := Star{
		ID:           f.nextStarID,
		SystemID:     systemID,
		Name:         input.Name,
		Description:  input.Description,
		MassSolar:    input.MassSolar,
		RadiusSolar:  input.RadiusSolar,
		ThumbnailURL: input.ThumbnailURL,
	}
	f.nextStarID++
	f.stars[systemID] = star
	copied := star
	return &copied, nil
}

func (f *fakeSystemStore) UpdateSystem(_ context.Context, sys *System) (*System, error) {
	f.systems[sys.ID] = *sys
	copied := *sys
	return &copied, nil
}

func (f *fakeSystemStore) UpdateStar(_ context.Context, star *Star) (*Star, error) {
	f.stars[star.SystemID] = *star
	copied := *star
	return &copied, nil
}

func (f *fakeSystemStore) DeletePlanetAggregatesBySystemID(_ context.Context, systemID int, _ *database.Tx) error {
	delete(f.planetRows, systemID)
	return nil
}

func (f *fakeSystemStore) DeleteStarBySystemID(_ context.Context, systemID int, _ *database.Tx) error {
	if _, ok := f.stars[systemID]; !ok {
		return errors.NotFoundf("no star found for system %d", systemID)
	}
	delete(f.stars, systemID)
	return nil
}

func (f *fakeSystemStore) DeleteSystem(_ context.Context, id int, _ *database.Tx) error {
	if _, ok := f.systems[id]; !ok {
		return errors.NotFoundf("system %d not found", id)
	}
	delete(f.systems, id)
	return nil
}

type fakeTxRunner struct {
	store *fakeSystemStore
}

func (r *fakeTxRunner) WithinTx(_ context.Context, fn func(tx *database.Tx) error) error {
	snap := r.store.clone()
	if err := fn(nil); err != nil {
		*r.store = *snap
		return err
	}
	return nil
}

const (
	ownerID = 42
	otherID = 7
)

func newSystemFixture() (*fakeSystemStore, *Service) {
	store := newFakeSystemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store, NewService(&fakeTxRunner{store: store}, store, logger)
}

func (f *fakeSystemStore) seedAggregate(withStar bool, planetRows int) int {
	sys := System{ID: f.nextSystemID, Name: "Trappist-1", DistanceLY: 40.7, UserID: ownerID}
	f.nextSystemID++
	f.systems[sys.ID] = sys
	if withStar {
		f.stars[sys.ID] = Star{ID: f.nextStarID, SystemID: sys.ID, Name: "Trappist-1a", MassSolar: 0.09, RadiusSolar: 0.12}
		f.nextStarID++
	}
	if planetRows > 0 {
		f.planetRows[sys.ID] = planetRows
	}
	return sys.ID
}

func TestServiceCreatePersistsSystemAndStar(t *testing.T) {
	store, svc := newSystemFixture()

	created, err := svc.Create(context.Background(), validInput(), ownerID)
	require.NoError(t, err)

	require.NotNil(t, created.Star)
	assert.Equal(t, ownerID, created.UserID)
	assert.Len(t, store.systems, 1)
	assert.Len(t, store.stars, 1)
}

func TestServiceCreateStarFailureLeavesNoSystemRow(t *testing.T) {
	store, svc := newSystemFixture()
	store.failStarCreate = true

	_, err := svc.Create(context.Background(), validInput(), ownerID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInternal, errors.GetType(err))

	assert.Empty(t, store.systems)
	assert.Empty(t, store.stars)
}

func TestServiceDeleteRemovesWholeAggregate(t *testing.T) {
	store, svc := newSystemFixture()
	id := store.seedAggregate(true, 3)

	require.NoError(t, svc.Delete(context.Background(), id, ownerID))

	assert.Empty(t, store.systems)
	assert.Empty(t, store.stars)
	assert.Empty(t, store.planetRows)
}

func TestServiceDeleteStarFailureLeavesAggregateUntouched(t *testing.T) {
	store, svc := newSystemFixture()
	id := store.seedAggregate(false, 3)

	err := svc.Delete(context.Background(), id, ownerID)
	require.Error(t, err)

	assert.Contains(t, store.systems, id)
	assert.Equal(t, 3, store.planetRows[id])
}

func TestServiceDeleteForbiddenForNonOwner(t *testing.T) {
	store, svc := newSystemFixture()
	id := store.seedAggregate(true, 1)

	err := svc.Delete(context.Background(), id, otherID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetType(err))

	assert.Contains(t, store.systems, id)
	assert.Contains(t, store.stars, id)
	assert.Equal(t, 1, store.planetRows[id])
}

func TestServiceUpdateNullThumbnailClears(t *testing.T) {
	store, svc := newSystemFixture()
	id := store.seedAggregate(true, 0)

	thumbnail := "old.png"
	sys := store.systems[id]
	sys.ThumbnailURL = &thumbnail
	store.systems[id] = sys

	var patch SystemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"thumbnail_url": null}`), &patch))

	updated, err := svc.Update(context.Background(), id, patch, ownerID)
	require.NoError(t, err)

	assert.Nil(t, updated.ThumbnailURL)
	assert.Nil(t, store.systems[id].ThumbnailURL)
}

func TestServiceUpdateStarNullThumbnailClears(t *testing.T) {
	store, svc := newSystemFixture()
	id := store.seedAggregate(true, 0)

	thumbnail := "old.png"
	star := store.stars[id]
	star.ThumbnailURL = &thumbnail
	store.stars[id] = star

	var patch StarPatch
	require.NoError(t, json.Unmarshal([]byte(`{"thumbnail_url": null}`), &patch))

	updated, err := svc.UpdateStar(context.Background(), id, patch, ownerID)
	require.NoError(t, err)

	assert.Nil(t, updated.ThumbnailURL)
	assert.Nil(t, store.stars[id].ThumbnailURL)
}
