package domain

import (
	"time"
)

// Feature is a named geometry stored in the feature table.
type Feature struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Family    Family         `json:"-"`
	Geometry  Geometry       `json:"-"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Distance  *float64       `json:"distance,omitempty"` // metres, set by proximity queries
	CreatedAt time.Time      `json:"created_at"`
}

// FeatureStored is published after a feature has been persisted.
type FeatureStored struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	SRID     *uint32   `json:"srid,omitempty"`
	EWKT     string    `json:"ewkt"`
	StoredAt time.Time `json:"stored_at"`
}

// IngestMessage is a geometry submitted asynchronously for storage.
type IngestMessage struct {
	Name     string         `json:"name"`
	Family   string         `json:"family"`
	Encoding string         `json:"encoding"`
	Input    string         `json:"input"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Summary describes a decoded geometry.
type Summary struct {
	Type      string   `json:"type"`
	Family    string   `json:"family"`
	SRID      *uint32  `json:"srid,omitempty"`
	NumPoints int      `json:"num_points"`
	Bounds    *Bounds  `json:"bounds,omitempty"`
	LengthM   *float64 `json:"length_m,omitempty"` // great-circle length, geography only
	Geohash   string   `json:"geohash,omitempty"`
	IsEmpty   bool     `json:"is_empty"`
}
