package planet

import (
	"time"
)

type Planet struct {
	ID                int       `json:"id"`
	SystemID          int       `json:"system_id"`
	TypeID            int       `json:"type_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Mass              float64   `json:"mass"`
	Radius            float64   `json:"radius"`
	AxialTilt         float64   `json:"axial_tilt"`
	RotationSpeed     float64   `json:"rotation_speed"`
	Albedo            float64   `json:"albedo"`
	OrbitalDistanceAU float64   `json:"orbital_distance_au"`
	HasRings          bool      `json:"has_rings"`
	MoonCount         int       `json:"moon_count"`
	TextureURL        string    `json:"texture_url"`
	RingsTextureURL   *string   `json:"rings_texture_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Compounds  []PlanetCompound `json:"compounds"`
	Atmosphere *Atmosphere      `json:"atmosphere"`
}

// PlanetCompound is a compound link joined with its catalog data.
type PlanetCompound struct {
	CID        int     `json:"cid"`
	Name       string  `json:"name"`
	Formula    string  `json:"formula"`
	Percentage float64 `json:"percentage"`
}

// Atmosphere is an optional 1:1 extension of a planet. It exists as a
// whole or not at all.
type Atmosphere struct {
	PlanetID         int     `json:"planet_id"`
	PressureAtm      float64 `json:"pressure_atm"`
	GreenhouseFactor float64 `json:"greenhouse_factor"`
	TextureURL       string  `json:"texture_url"`

	Compounds []PlanetCompound `json:"compounds"`
}

// CompoundShare references a catalog compound by CID with a percentage.
type CompoundShare struct {
	CID        int     `json:"cid"`
	Percentage float64 `json:"percentage"`
}

type AtmosphereInput struct {
	PressureAtm      float64         `json:"pressure_atm"`
	GreenhouseFactor float64         `json:"greenhouse_factor"`
	TextureURL       string          `json:"texture_url"`
	Compounds        []CompoundShare `json:"compounds"`
}

type PlanetInput struct {
	SystemID          int              `json:"system_id"`
	TypeID            int              `json:"type_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Mass              float64          `json:"mass"`
	Radius            float64          `json:"radius"`
	AxialTilt         float64          `json:"axial_tilt"`
	RotationSpeed     float64          `json:"rotation_speed"`
	Albedo            float64          `json:"albedo"`
	OrbitalDistanceAU float64          `json:"orbital_distance_au"`
	HasRings          bool             `json:"has_rings"`
	MoonCount         int              `json:"moon_count"`
	TextureURL        string           `json:"texture_url"`
	RingsTextureURL   *string          `json:"rings_texture_url"`
	Compounds         []CompoundShare  `json:"compounds"`
	Atmosphere        *AtmosphereInput `json:"atmosphere"`
}
