package postgres

import (
	"database/sql/driver"
	"fmt"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/platform"
)

// Column adapts a geometry column to database/sql and pgx. Scan accepts the output of
// ST_AsBinary (bytes), ST_AsText, or hex WKB text. Value renders the profile's text form, to
// be wrapped in ST_GeomFromEWKT or ST_GeogFromText.
type Column struct {
	Family   domain.Family
	Profile  platform.Profile
	Geometry domain.Geometry
}

// GeometryColumn returns a planar column using profile.
func GeometryColumn(profile platform.Profile) *Column {
	return &Column{Family: domain.FamilyGeometry, Profile: profile}
}

// GeographyColumn returns a geodetic column using profile.
func GeographyColumn(profile platform.Profile) *Column {
	return &Column{Family: domain.FamilyGeography, Profile: profile}
}

// Scan implements sql.Scanner.
func (c *Column) Scan(src any) error {
	var (
		g   domain.Geometry
		err error
	)
	switch v := src.(type) {
	case nil:
		c.Geometry = nil
		return nil
	case []byte:
		g, err = c.Profile.FromDatabase(v, c.Family, codec.Binary)
	case string:
		kind := codec.Text
		if len(v) > 0 && v[0] == '0' {
			kind = codec.Hex
		}
		g, err = c.Profile.FromDatabase([]byte(v), c.Family, kind)
	default:
		return fmt.Errorf("scan %s column: unsupported source %T", c.Family, src)
	}
	if err != nil {
		return fmt.Errorf("scan %s column: %w", c.Family, err)
	}
	c.Geometry = g
	return nil
}

// Value implements driver.Valuer.
func (c Column) Value() (driver.Value, error) {
	if c.Geometry == nil {
		return nil, nil
	}
	return c.Profile.ToDatabase(c.Geometry), nil
}
