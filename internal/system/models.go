package system

import (
	"encoding/json"
	"time"
)

type System struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DistanceLY   float64   `json:"distance_ly"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	UserID       int       `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Star *Star `json:"star,omitempty"`
}

// Star lifecycle is fully bound to its system: created with it, deleted
// with it, never on its own.
type Star struct {
	ID           int       `json:"id"`
	SystemID     int       `json:"system_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	MassSolar    float64   `json:"mass_solar"`
	RadiusSolar  float64   `json:"radius_solar"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StarInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	MassSolar    float64 `json:"mass_solar"`
	RadiusSolar  float64 `json:"radius_solar"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type SystemInput struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DistanceLY   float64   `json:"distance_ly"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Star         StarInput `json:"star"`
}

// SystemPatch is a partial update. Key presence is tracked during JSON
// decoding so that "thumbnail_url": null (clear) stays distinguishable
// from an absent key (leave alone).
type SystemPatch struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	DistanceLY   *float64 `json:"distance_ly"`
	ThumbnailURL *string  `json:"thumbnail_url"`

	ThumbnailURLSet bool `json:"-"`

	fieldCount int
}

var systemPatchKeys = map[string]struct{}{
	"name":          {},
	"description":   {},
	"distance_ly":   {},
	"thumbnail_url": {},
}

func (p *SystemPatch) UnmarshalJSON(data []byte) error {
	type alias SystemPatch

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = SystemPatch(a)
	_, p.ThumbnailURLSet = raw["thumbnail_url"]
	p.fieldCount = countKnownKeys(raw, systemPatchKeys)
	return nil
}

func (p *SystemPatch) IsEmpty() bool {
	return p.fieldCount == 0
}

// StarPatch is a partial update of a star, with the same key-presence
// tracking as SystemPatch.
type StarPatch struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	MassSolar    *float64 `json:"mass_solar"`
	RadiusSolar  *float64 `json:"radius_solar"`
	ThumbnailURL *string  `json:"thumbnail_url"`

	ThumbnailURLSet bool `json:"-"`

	fieldCount int
}

var starPatchKeys = map[string]struct{}{
	"name":          {},
	"description":   {},
	"mass_solar":    {},
	"radius_solar":  {},
	"thumbnail_url": {},
}

func (p *StarPatch) UnmarshalJSON(data []byte) error {
	type alias StarPatch

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = StarPatch(a)
	_, p.ThumbnailURLSet = raw["thumbnail_url"]
	p.fieldCount = countKnownKeys(raw, starPatchKeys)
	return nil
}

func (p *StarPatch) IsEmpty() bool {
	return p.fieldCount == 0
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
