package safety

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
)

const (
	// DefaultRadiusMeters is how close a blackspot must be to either
	// endpoint to count against a route.
	DefaultRadiusMeters = 2000.0

	maxSegments     = 3
	maxSegmentRisk  = 95.0
	riskPerAccident = 5.0
	minSafetyScore  = 30.0
	minutesPerKm    = 3

	weatherClear = "Current weather: Clear skies. Road conditions are favorable."
)

// Scorer rates a route by the blackspots near it.
type Scorer struct {
	index    *blackspot.Index
	radius   float64
	corridor float64
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithRadius overrides the endpoint radius.
func WithRadius(meters float64) ScorerOption {
	return func(s *Scorer) { s.radius = meters }
}

// WithCorridor also counts blackspots within meters of the straight line
// between origin and destination.
func WithCorridor(meters float64) ScorerOption {
	return func(s *Scorer) { s.corridor = meters }
}

// NewScorer creates a scorer over idx.
func NewScorer(idx *blackspot.Index, opts ...ScorerOption) *Scorer {
	s := &Scorer{index: idx, radius: DefaultRadiusMeters}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score builds the Safety Report for origin to destination.
//
// No nearby blackspots scores 92 (low). One or two score 75 (medium).
// Three or more score 100 minus the mean segment risk, floored at 30,
// and are high risk below 60.
func (s *Scorer) Score(origin, destination geo.Coordinate) Report {
	matches := s.index.NearRoute(origin, destination, s.radius, s.corridor)

	// Equal risks keep dataset order.
	sort.Slice(matches, func(i, j int) bool { return matches[i].Order < matches[j].Order })

	segments := make([]Segment, 0, len(matches))
	var totalRisk float64
	for _, m := range matches {
		risk := math.Min(float64(m.AccidentCount)*riskPerAccident, maxSegmentRisk)
		totalRisk += risk
		segments = append(segments, Segment{
			Location:  m.Name,
			RiskScore: risk,
			Reason:    fmt.Sprintf("Historical accident hotspot (%d accidents recorded)", m.AccidentCount),
		})
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].RiskScore > segments[j].RiskScore
	})

	var (
		score     float64
		level     RiskLevel
		predicted int
	)
	switch n := len(segments); {
	case n == 0:
		score, level, predicted = 92, RiskLow, 0
	case n <= 2:
		score, level, predicted = 75, RiskMedium, 1
	default:
		score = math.Max(100-totalRisk/float64(n), minSafetyScore)
		level = RiskMedium
		if score < 60 {
			level = RiskHigh
		}
		predicted = n / 2
	}

	if len(segments) > maxSegments {
		segments = segments[:maxSegments]
	}

	km := geo.Distance(origin, destination) / 1000
	return Report{
		RouteID:            "route_" + strconv.FormatFloat(origin.Lat, 'f', -1, 64) + "_" + strconv.FormatFloat(destination.Lat, 'f', -1, 64),
		SafetyScore:        math.Round(score*10) / 10,
		RiskLevel:          level,
		PredictedAccidents: predicted,
		HighRiskSegments:   segments,
		WeatherImpact:      weatherClear,
		Recommendations:    Recommendations(level),
		Distance:           fmt.Sprintf("%.1f km", km),
		Duration:           fmt.Sprintf("%d mins (approx.)", int(km*minutesPerKm)),
	}
}

// Recommendations returns the driving advice for a risk level.
func Recommendations(level RiskLevel) []string {
	recs := []string{
		"Maintain speed limit and follow traffic signals",
		"Avoid rush hours (8-10 AM, 6-8 PM) if possible",
	}
	switch level {
	case RiskHigh:
		recs = append(recs,
			"⚠️ Consider taking an alternative route",
			"Stay extra alert in high-risk zones marked above",
			"Avoid night travel on this route if possible",
		)
	case RiskMedium:
		recs = append(recs,
			"Reduce speed near accident-prone areas",
			"Keep safe distance from vehicles ahead",
		)
	default:
		recs = append(recs, "This route has a good safety record. Drive safely!")
	}
	return recs
}
