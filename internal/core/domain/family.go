package domain

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Family selects how coordinates are interpreted and validated.
type Family uint8

const (
	// FamilyGeometry is the planar family; any finite coordinate is accepted.
	FamilyGeometry Family = iota
	// FamilyGeography is the lon/lat family on the sphere.
	FamilyGeography
)

func (f Family) String() string {
	if f == FamilyGeography {
		return "geography"
	}
	return "geometry"
}

// ParseFamily accepts "geometry" or "geography" in any case.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "geometry":
		return FamilyGeometry, nil
	case "geography":
		return FamilyGeography, nil
	default:
		return FamilyGeometry, errors.Newf("unknown geometry family %q", s)
	}
}

// CoordinateValidator checks a single (x, y) pair.
type CoordinateValidator interface {
	Validate(x, y float64) error
}

// Validator returns the validation strategy for the family.
func (f Family) Validator() CoordinateValidator {
	if f == FamilyGeography {
		return geographicValidator{}
	}
	return planarValidator{}
}

type planarValidator struct{}

func (planarValidator) Validate(x, y float64) error {
	if err := checkFinite("x", x); err != nil {
		return err
	}
	return checkFinite("y", y)
}

type geographicValidator struct{}

const (
	minLongitude = -180
	maxLongitude = 180
	minLatitude  = -90
	maxLatitude  = 90
)

func (geographicValidator) Validate(x, y float64) error {
	if err := checkRange("longitude", x, minLongitude, maxLongitude); err != nil {
		return err
	}
	return checkRange("latitude", y, minLatitude, maxLatitude)
}

// NaN and infinities cannot be written back as WKT, so no family accepts them.
func checkFinite(axis string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidCoordinateError{Axis: axis, Value: v, Min: math.Inf(-1), Max: math.Inf(1)}
	}
	return nil
}

func checkRange(axis string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return &InvalidCoordinateError{Axis: axis, Value: v, Min: lo, Max: hi}
	}
	return nil
}
