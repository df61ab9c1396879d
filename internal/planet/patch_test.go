package planet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePatch(t *testing.T, body string) *PlanetPatch {
	t.Helper()

	var patch PlanetPatch
	require.NoError(t, json.Unmarshal([]byte(body), &patch))
	return &patch
}

func TestPatchEmptyObjectIsEmpty(t *testing.T) {
	patch := decodePatch(t, `{}`)

	assert.True(t, patch.IsEmpty())
}

func TestPatchUnknownKeysDoNotCount(t *testing.T) {
	patch := decodePatch(t, `{"bogus": 1}`)
	assert.True(t, patch.IsEmpty())

	mixed := decodePatch(t, `{"bogus": 1, "mass": 2}`)
	assert.False(t, mixed.IsEmpty())
}

func TestPatchNullRingsTextureClears(t *testing.T) {
	texture := "rings.png"
	current := Planet{ID: 7, HasRings: true, RingsTextureURL: &texture}

	null := decodePatch(t, `{"rings_texture_url": null}`)
	assert.False(t, null.IsEmpty())
	assert.True(t, null.RingsTextureURLSet)

	merged := mergePlanet(current, null)
	assert.Nil(t, merged.RingsTextureURL)

	absent := decodePatch(t, `{"mass": 2}`)
	assert.False(t, absent.RingsTextureURLSet)
	assert.NotNil(t, mergePlanet(current, absent).RingsTextureURL)
}

func TestPatchTracksCompoundPresence(t *testing.T) {
	withCompounds := decodePatch(t, `{"compounds": []}`)
	assert.True(t, withCompounds.CompoundsSet)
	assert.Empty(t, withCompounds.Compounds)
	assert.False(t, withCompounds.IsEmpty())

	withoutCompounds := decodePatch(t, `{"mass": 2}`)
	assert.False(t, withoutCompounds.CompoundsSet)
}

func TestPatchAtmosphereTriState(t *testing.T) {
	absent := decodePatch(t, `{"mass": 2}`)
	assert.False(t, absent.AtmosphereSet)

	null := decodePatch(t, `{"atmosphere": null}`)
	assert.True(t, null.AtmosphereSet)
	assert.Nil(t, null.Atmosphere)

	object := decodePatch(t, `{"atmosphere": {"pressure_atm": 1.2}}`)
	assert.True(t, object.AtmosphereSet)
	require.NotNil(t, object.Atmosphere)
	require.NotNil(t, object.Atmosphere.PressureAtm)
	assert.Equal(t, 1.2, *object.Atmosphere.PressureAtm)
}

func TestAtmospherePatchIsComplete(t *testing.T) {
	patch := decodePatch(t, `{"atmosphere": {"pressure_atm": 1, "greenhouse_factor": 0.3, "texture_url": "a.png", "compounds": []}}`)
	require.NotNil(t, patch.Atmosphere)
	assert.True(t, patch.Atmosphere.IsComplete())

	partial := decodePatch(t, `{"atmosphere": {"pressure_atm": 1, "greenhouse_factor": 0.3}}`)
	require.NotNil(t, partial.Atmosphere)
	assert.False(t, partial.Atmosphere.IsComplete())
}

func TestMergePlanetAppliesOnlySuppliedFields(t *testing.T) {
	current := Planet{
		ID:        7,
		TypeID:    1,
		Name:      "Kepler-22b",
		Mass:      5,
		Radius:    1,
		MoonCount: 2,
	}

	patch := decodePatch(t, `{"mass": 6.5, "name": "Kepler-22c"}`)
	merged := mergePlanet(current, patch)

	assert.Equal(t, 6.5, merged.Mass)
	assert.Equal(t, "Kepler-22c", merged.Name)
	assert.Equal(t, 1.0, merged.Radius)
	assert.Equal(t, 2, merged.MoonCount)
	assert.Equal(t, 7, merged.ID)
}

func TestMergePlanetZeroValuesApply(t *testing.T) {
	current := Planet{Mass: 5, Radius: 1, MoonCount: 3, HasRings: true}

	patch := decodePatch(t, `{"moon_count": 0, "has_rings": false}`)
	merged := mergePlanet(current, patch)

	assert.Equal(t, 0, merged.MoonCount)
	assert.False(t, merged.HasRings)
	assert.Equal(t, 5.0, merged.Mass)
}

func TestMergeAtmosphere(t *testing.T) {
	current := Atmosphere{
		PlanetID:         7,
		PressureAtm:      1,
		GreenhouseFactor: 0.3,
		TextureURL:       "old.png",
	}

	patch := decodePatch(t, `{"atmosphere": {"pressure_atm": 2.5}}`)
	require.NotNil(t, patch.Atmosphere)

	merged := mergeAtmosphere(current, patch.Atmosphere)
	assert.Equal(t, 2.5, merged.PressureAtm)
	assert.Equal(t, 0.3, merged.GreenhouseFactor)
	assert.Equal(t, "old.png", merged.TextureURL)
	assert.Equal(t, 7, merged.PlanetID)
}
