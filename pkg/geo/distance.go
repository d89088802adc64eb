package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// degToMeters converts degree-scaled equirectangular distances to meters.
const degToMeters = math.Pi / 180 * earthRadiusMeters

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b Coordinate) float64 {
	lat1r := a.Lat * math.Pi / 180
	lat2r := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SegmentDistance returns the distance in meters from p to the segment a-b
// and the projection ratio along it, clamped to [0, 1]. It works in an
// equirectangular projection, which is accurate at city scale.
func SegmentDistance(p, a, b Coordinate) (dist float64, ratio float64) {
	cosLat := math.Cos((a.Lat + b.Lat) / 2 * math.Pi / 180)

	ax, ay := a.Lng*cosLat, a.Lat
	bx, by := b.Lng*cosLat, b.Lat
	px, py := p.Lng*cosLat, p.Lat

	// Compare unprojected values so identical endpoints stay degenerate.
	if a == b {
		ex, ey := px-ax, py-ay
		return math.Sqrt(ex*ex+ey*ey) * degToMeters, 0
	}

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}

	ex := px - (ax + t*dx)
	ey := py - (ay + t*dy)
	return math.Sqrt(ex*ex+ey*ey) * degToMeters, t
}

// Midpoint returns the point halfway between a and b in lat/lng space.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}
