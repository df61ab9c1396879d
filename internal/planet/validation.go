package planet

import (
	"fmt"
	"strings"

	"orrery-server/internal/planettype"
	"orrery-server/internal/shared/errors"
)

// ValidatePhysics checks a planet against its type's physical envelope.
// All violations are collected and reported together, each naming the
// offending field. The same check runs on create, full replace and the
// merged result of a partial patch.
func ValidatePhysics(p Planet, t *planettype.PlanetType) error {
	var violations []string

	if p.Mass < t.MinMass || p.Mass > t.MaxMass {
		violations = append(violations,
			fmt.Sprintf("mass %g outside [%g, %g] for type %q", p.Mass, t.MinMass, t.MaxMass, t.Name))
	}
	if p.Radius < t.MinRadius || p.Radius > t.MaxRadius {
		violations = append(violations,
			fmt.Sprintf("radius %g outside [%g, %g] for type %q", p.Radius, t.MinRadius, t.MaxRadius, t.Name))
	}
	if p.HasRings && !t.HasRings {
		violations = append(violations,
			fmt.Sprintf("has_rings not allowed for type %q", t.Name))
	}
	if p.MoonCount > t.MaxMoons {
		violations = append(violations,
			fmt.Sprintf("moon_count %d exceeds maximum %d for type %q", p.MoonCount, t.MaxMoons, t.Name))
	}
	if p.MoonCount < 0 {
		violations = append(violations, "moon_count must not be negative")
	}

	if len(violations) > 0 {
		return errors.Validationf("invalid planet physics: %s", strings.Join(violations, "; "))
	}
	return nil
}

// ValidateComposition checks an atmosphere's compound shares. It runs
// whenever a compound set is supplied, never against stored rows.
func ValidateComposition(compounds []CompoundShare) error {
	var sum float64
	for _, share := range compounds {
		if share.Percentage < 0 {
			return errors.Validationf("compound %d percentage must not be negative", share.CID)
		}
		sum += share.Percentage
	}

	if sum > 100 {
		return errors.Validationf("atmosphere compound percentages sum to %g, must not exceed 100", sum)
	}
	return nil
}
