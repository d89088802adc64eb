// Package geo holds the coordinate type shared by the map, the geocoders and
// the safety scorer, plus the small amount of spherical math they need.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned for NaN, infinite or out-of-range values.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NagpurCenter is the default map focus.
var NagpurCenter = Coordinate{Lat: 21.1458, Lng: 79.0882}

// Validate reports whether c is a finite point on the globe.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrInvalidCoordinate)
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidCoordinate)
	}
	return nil
}

// String formats c as "lat, lng" with four decimals, e.g. "21.0891, 79.0641".
// This is also the address label used when reverse geocoding fails.
func (c Coordinate) String() string {
	return FormatCoordinate(c.Lat, c.Lng)
}

// FormatCoordinate formats a raw pair the same way as Coordinate.String.
func FormatCoordinate(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

// BBox is a lat/lng bounding box.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// NagpurBBox covers the Nagpur municipal area and its ring road.
var NagpurBBox = BBox{MinLat: 20.95, MaxLat: 21.30, MinLng: 78.90, MaxLng: 79.25}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}

// Around returns the box of roughly radiusMeters around c. The box is a
// superset of the circle, so callers still filter by exact distance.
func Around(c Coordinate, radiusMeters float64) BBox {
	dLat := radiusMeters / degToMeters
	cosLat := math.Cos(c.Lat * math.Pi / 180)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	dLng := dLat / cosLat
	return BBox{
		MinLat: c.Lat - dLat,
		MaxLat: c.Lat + dLat,
		MinLng: c.Lng - dLng,
		MaxLng: c.Lng + dLng,
	}
}
