package safety

import (
	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
)

// Heatmap weights every blackspot by its accident count and every
// user-reported accident by one.
func Heatmap(spots []blackspot.Blackspot, reported []geo.Coordinate) []HeatmapPoint {
	out := make([]HeatmapPoint, 0, len(spots)+len(reported))
	for _, s := range spots {
		out = append(out, HeatmapPoint{Lat: s.Location.Lat, Lng: s.Location.Lng, Intensity: s.AccidentCount})
	}
	for _, c := range reported {
		out = append(out, HeatmapPoint{Lat: c.Lat, Lng: c.Lng, Intensity: 1})
	}
	return out
}

// WithUserReports adds n user reports to the baseline figures. Each report
// also counts as one accident.
func (s Statistics) WithUserReports(n int) Statistics {
	s.TotalAccidents += n
	s.UserReportsCount = n
	return s
}
