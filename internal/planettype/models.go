package planettype

// PlanetType is read-only reference data defining the physical envelope
// every planet of that type must satisfy.
type PlanetType struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	MinMass    float64 `json:"min_mass"`
	MaxMass    float64 `json:"max_mass"`
	MinRadius  float64 `json:"min_radius"`
	MaxRadius  float64 `json:"max_radius"`
	HasRings   bool    `json:"has_rings"`
	HasSurface bool    `json:"has_surface"`
	MaxMoons   int     `json:"max_moons"`
}
