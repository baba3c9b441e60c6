// Package platform holds the database dialect profiles that decide how geometry columns are
// read and written: the SRID given to geography values that arrive without one, and whether
// text output carries the extended "SRID=n;" prefix.
package platform

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
)

// WGS84 is the SRID of longitude/latitude on the WGS 84 ellipsoid.
const WGS84 uint32 = 4326

// Profile describes one database dialect.
type Profile struct {
	Name string
	// GeographySRID is applied to geography values decoded without an SRID. Zero disables
	// defaulting.
	GeographySRID uint32
	ExtendedWKT   bool
}

var (
	PostgreSQL = Profile{Name: "postgresql", GeographySRID: WGS84, ExtendedWKT: true}
	MySQL      = Profile{Name: "mysql"}
)

var profiles = map[string]Profile{
	"postgresql": PostgreSQL,
	"postgres":   PostgreSQL,
	"postgis":    PostgreSQL,
	"mysql":      MySQL,
}

// Lookup returns the profile registered under name.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, errors.Newf("unknown platform %q", name)
	}
	return p, nil
}

// FromDatabase decodes a column value and applies the SRID default for geography.
func (p Profile) FromDatabase(raw []byte, family domain.Family, kind codec.Encoding) (domain.Geometry, error) {
	g, err := codec.Decode(raw, family, kind)
	if err != nil {
		return nil, err
	}
	p.ApplyDefaults(g)
	return g, nil
}

// ApplyDefaults sets the geography SRID when g has none.
func (p Profile) ApplyDefaults(g domain.Geometry) {
	if g.Family() == domain.FamilyGeography && p.GeographySRID != 0 {
		domain.DefaultSRID(g, p.GeographySRID)
	}
}

// ToDatabase renders g as the text form the dialect expects.
func (p Profile) ToDatabase(g domain.Geometry) string {
	return codec.EncodeExtended(g, p.ExtendedWKT)
}
