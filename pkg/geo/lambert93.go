// Package geo converts the registry's planar Lambert 93 coordinates
// (EPSG:2154, RGF93 datum) to WGS84 longitude/latitude.
//
// RGF93 and WGS84 agree to within a few centimetres, so no datum shift is
// applied: the conversion is the inverse Lambert conformal conic projection
// on the GRS80 ellipsoid.
//
// All functions are pure and safe for concurrent use.
package geo

import (
	"math"
	"strconv"
	"strings"

	dErrors "sirene/pkg/domain-errors"
)

// Lambert 93 projection constants (IGN).
const (
	lambertN  = 0.7256077650532670
	lambertC  = 11754255.426096
	lambertXs = 700000.0
	lambertYs = 12655612.049876
	grs80E    = 0.08181919104281579
	lambda0   = 3.0 * math.Pi / 180.0

	latitudeEpsilon = 1e-11
	maxIterations   = 50
)

// Valid planar range for metropolitan France.
const (
	MinX = 0.0
	MaxX = 1_200_000.0
	MinY = 6_000_000.0
	MaxY = 7_200_000.0
)

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether p lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Longitude >= -180 && p.Longitude <= 180 &&
		p.Latitude >= -90 && p.Latitude <= 90
}

// InLambert93Range reports whether (x, y) lies within the planar range
// covered by the projection.
func InLambert93Range(x, y float64) bool {
	return x >= MinX && x <= MaxX && y >= MinY && y <= MaxY
}

// ToWGS84 converts a Lambert 93 pair.
//
// Out-of-range or non-finite input fails with a coordinate conversion error
// when strictRangeCheck is set. Otherwise such input, and any degenerate
// result (NaN, infinite or outside WGS84 bounds), yields a nil point and no
// error.
func ToWGS84(x, y float64, strictRangeCheck bool) (*Point, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		if !strictRangeCheck {
			return nil, nil
		}
		return nil, dErrors.CoordinateConversion(x, y, "coordinates must be finite numbers", nil)
	}
	if strictRangeCheck && !InLambert93Range(x, y) {
		return nil, dErrors.CoordinateConversion(x, y, "coordinates outside the Lambert 93 range", nil)
	}

	p, ok := inverseLambert(x, y)
	if !ok || !p.Valid() {
		return nil, nil
	}
	return &p, nil
}

// ParseToWGS84 is ToWGS84 for the registry's string-encoded coordinates.
// A blank component yields a nil point; a non-numeric one fails with a
// coordinate conversion error.
func ParseToWGS84(x, y string, strictRangeCheck bool) (*Point, error) {
	xs, ys := strings.TrimSpace(x), strings.TrimSpace(y)
	if xs == "" || ys == "" {
		return nil, nil
	}
	xf, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return nil, dErrors.CoordinateConversion(x, y, "x is not numeric", err)
	}
	yf, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return nil, dErrors.CoordinateConversion(x, y, "y is not numeric", err)
	}
	return ToWGS84(xf, yf, strictRangeCheck)
}

func inverseLambert(x, y float64) (Point, bool) {
	dx := x - lambertXs
	dy := y - lambertYs
	r := math.Hypot(dx, dy)
	if r == 0 {
		return Point{}, false
	}
	gamma := math.Atan2(dx, -dy)
	lon := lambda0 + gamma/lambertN

	latIso := -1.0 / lambertN * math.Log(math.Abs(r/lambertC))
	lat := 2*math.Atan(math.Exp(latIso)) - math.Pi/2
	for range maxIterations {
		es := grs80E * math.Sin(lat)
		next := 2*math.Atan(math.Pow((1+es)/(1-es), grs80E/2)*math.Exp(latIso)) - math.Pi/2
		if math.Abs(next-lat) < latitudeEpsilon {
			lat = next
			break
		}
		lat = next
	}

	p := Point{
		Longitude: lon * 180 / math.Pi,
		Latitude:  lat * 180 / math.Pi,
	}
	if math.IsNaN(p.Longitude) || math.IsNaN(p.Latitude) {
		return Point{}, false
	}
	return p, true
}
