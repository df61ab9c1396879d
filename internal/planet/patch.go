package planet

import (
	"encoding/json"
)

// PlanetPatch is a partial update. Field presence is tracked during JSON
// decoding so that "atmosphere": null (delete), an absent "atmosphere"
// (leave alone) and "compounds": [] (clear) stay distinguishable.
type PlanetPatch struct {
	TypeID            *int     `json:"type_id"`
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Mass              *float64 `json:"mass"`
	Radius            *float64 `json:"radius"`
	AxialTilt         *float64 `json:"axial_tilt"`
	RotationSpeed     *float64 `json:"rotation_speed"`
	Albedo            *float64 `json:"albedo"`
	OrbitalDistanceAU *float64 `json:"orbital_distance_au"`
	HasRings          *bool    `json:"has_rings"`
	MoonCount         *int     `json:"moon_count"`
	TextureURL        *string  `json:"texture_url"`
	RingsTextureURL   *string  `json:"rings_texture_url"`

	Compounds    []CompoundShare `json:"compounds"`
	CompoundsSet bool            `json:"-"`

	Atmosphere    *AtmospherePatch `json:"atmosphere"`
	AtmosphereSet bool             `json:"-"`

	RingsTextureURLSet bool `json:"-"`

	fieldCount int
}

var planetPatchKeys = map[string]struct{}{
	"type_id":             {},
	"name":                {},
	"description":         {},
	"mass":                {},
	"radius":              {},
	"axial_tilt":          {},
	"rotation_speed":      {},
	"albedo":              {},
	"orbital_distance_au": {},
	"has_rings":           {},
	"moon_count":          {},
	"texture_url":         {},
	"rings_texture_url":   {},
	"compounds":           {},
	"atmosphere":          {},
}

func countKnownKeys(raw map[string]json.RawMessage, known map[string]struct{}) int {
	count := 0
	for key := range raw {
		if _, ok := known[key]; ok {
			count++
		}
	}
	return count
}

func (p *PlanetPatch) UnmarshalJSON(data []byte) error {
	type alias PlanetPatch

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = PlanetPatch(a)
	_, p.CompoundsSet = raw["compounds"]
	_, p.AtmosphereSet = raw["atmosphere"]
	_, p.RingsTextureURLSet = raw["rings_texture_url"]
	p.fieldCount = countKnownKeys(raw, planetPatchKeys)
	return nil
}

func (p *PlanetPatch) IsEmpty() bool {
	return p.fieldCount == 0
}

// AtmospherePatch is a partial update of an atmosphere. Against an
// existing atmosphere, only supplied fields change; against a planet
// without one, it must be complete.
type AtmospherePatch struct {
	PressureAtm      *float64 `json:"pressure_atm"`
	GreenhouseFactor *float64 `json:"greenhouse_factor"`
	TextureURL       *string  `json:"texture_url"`

	Compounds    []CompoundShare `json:"compounds"`
	CompoundsSet bool            `json:"-"`
}

func (p *AtmospherePatch) UnmarshalJSON(data []byte) error {
	type alias AtmospherePatch

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = AtmospherePatch(a)
	_, p.CompoundsSet = raw["compounds"]
	return nil
}

// IsComplete reports whether every atmosphere field is supplied.
func (p *AtmospherePatch) IsComplete() bool {
	return p.PressureAtm != nil && p.GreenhouseFactor != nil && p.TextureURL != nil && p.CompoundsSet
}

// mergePlanet applies supplied patch fields onto a copy of the current
// planet. Validation runs on the result, not the delta.
func mergePlanet(current Planet, patch *PlanetPatch) Planet {
	merged := current

	if patch.TypeID != nil {
		merged.TypeID = *patch.TypeID
	}
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Mass != nil {
		merged.Mass = *patch.Mass
	}
	if patch.Radius != nil {
		merged.Radius = *patch.Radius
	}
	if patch.AxialTilt != nil {
		merged.AxialTilt = *patch.AxialTilt
	}
	if patch.RotationSpeed != nil {
		merged.RotationSpeed = *patch.RotationSpeed
	}
	if patch.Albedo != nil {
		merged.Albedo = *patch.Albedo
	}
	if patch.OrbitalDistanceAU != nil {
		merged.OrbitalDistanceAU = *patch.OrbitalDistanceAU
	}
	if patch.HasRings != nil {
		merged.HasRings = *patch.HasRings
	}
	if patch.MoonCount != nil {
		merged.MoonCount = *patch.MoonCount
	}
	if patch.TextureURL != nil {
		merged.TextureURL = *patch.TextureURL
	}
	if patch.RingsTextureURLSet {
		// rings_texture_url: null clears the ring texture
		merged.RingsTextureURL = patch.RingsTextureURL
	}

	return merged
}

// mergeAtmosphere applies supplied patch fields onto a copy of the
// existing atmosphere. Compounds are handled by the caller since their
// replacement touches other rows.
func mergeAtmosphere(current Atmosphere, patch *AtmospherePatch) Atmosphere {
	merged := current

	if patch.PressureAtm != nil {
		merged.PressureAtm = *patch.PressureAtm
	}
	if patch.GreenhouseFactor != nil {
		merged.GreenhouseFactor = *patch.GreenhouseFactor
	}
	if patch.TextureURL != nil {
		merged.TextureURL = *patch.TextureURL
	}

	return merged
}
