package planet

import (
	"testing"

	"orrery-server/internal/planettype"
	"orrery-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointMassType() *planettype.PlanetType {
	return &planettype.PlanetType{
		ID:        1,
		Name:      "Point Mass",
		MinMass:   5,
		MaxMass:   5,
		MinRadius: 1,
		MaxRadius: 1,
		HasRings:  true,
		MaxMoons:  5,
	}
}

func TestValidatePhysicsBoundsAreInclusive(t *testing.T) {
	p := Planet{Mass: 5, Radius: 1, HasRings: true, MoonCount: 5}

	require.NoError(t, ValidatePhysics(p, pointMassType()))
}

func TestValidatePhysicsMassOutsideEnvelope(t *testing.T) {
	p := Planet{Mass: 99, Radius: 1}

	err := ValidatePhysics(p, pointMassType())
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
	assert.Contains(t, err.Error(), "mass")
	assert.Contains(t, err.Error(), "Point Mass")
}

func TestValidatePhysicsCollectsAllViolations(t *testing.T) {
	p := Planet{Mass: 99, Radius: 7, HasRings: true, MoonCount: 12}
	planetType := pointMassType()
	planetType.HasRings = false

	err := ValidatePhysics(p, planetType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mass")
	assert.Contains(t, err.Error(), "radius")
	assert.Contains(t, err.Error(), "has_rings")
	assert.Contains(t, err.Error(), "moon_count")
}

func TestValidatePhysicsRejectsNegativeMoonCount(t *testing.T) {
	p := Planet{Mass: 5, Radius: 1, MoonCount: -1}

	err := ValidatePhysics(p, pointMassType())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moon_count must not be negative")
}

func TestValidateCompositionAcceptsPartialSum(t *testing.T) {
	shares := []CompoundShare{
		{CID: 962, Percentage: 60},
		{CID: 280, Percentage: 39.9},
	}

	require.NoError(t, ValidateComposition(shares))
}

func TestValidateCompositionRejectsSumOverHundred(t *testing.T) {
	shares := []CompoundShare{
		{CID: 962, Percentage: 70},
		{CID: 280, Percentage: 31},
	}

	err := ValidateComposition(shares)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
	assert.Contains(t, err.Error(), "exceed 100")
}

func TestValidateCompositionRejectsNegativePercentage(t *testing.T) {
	shares := []CompoundShare{{CID: 962, Percentage: -1}}

	err := ValidateComposition(shares)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestValidateCompositionAllowsEmptySet(t *testing.T) {
	require.NoError(t, ValidateComposition(nil))
	require.NoError(t, ValidateComposition([]CompoundShare{}))
}
