// Package safety defines the route Safety Report and the blackspot-proximity
// scorer used by the reference backend and the offline client.
package safety

import (
	"errors"
	"fmt"
)

// ErrMalformedReport is returned by Validate for a report that cannot have
// come from an assessment.
var ErrMalformedReport = errors.New("malformed safety report")

// RiskLevel is the coarse risk classification of a route.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether l is one of the known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Segment is a high-risk stretch along a route.
type Segment struct {
	Location  string  `json:"location"`
	RiskScore float64 `json:"risk_score"`
	Reason    string  `json:"reason"`
}

// Report is the prediction result for one origin/destination pair.
type Report struct {
	RouteID            string    `json:"route_id"`
	SafetyScore        float64   `json:"safety_score"`
	RiskLevel          RiskLevel `json:"risk_level"`
	PredictedAccidents int       `json:"predicted_accidents"`
	HighRiskSegments   []Segment `json:"high_risk_segments"`
	WeatherImpact      string    `json:"weather_impact"`
	Recommendations    []string  `json:"recommendations"`
	Distance           string    `json:"distance,omitempty"`
	Duration           string    `json:"duration,omitempty"`
}

// Grade returns the letter grade shown next to the score.
func (r *Report) Grade() string { return Grade(r.SafetyScore) }

// Color returns the display colour for the report's risk level.
func (r *Report) Color() string { return RiskColor(r.RiskLevel) }

// Validate checks the risk level and that the score lies in [0, 100].
func (r *Report) Validate() error {
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("%w: risk level %q", ErrMalformedReport, r.RiskLevel)
	}
	if !(r.SafetyScore >= 0 && r.SafetyScore <= 100) {
		return fmt.Errorf("%w: safety score %v", ErrMalformedReport, r.SafetyScore)
	}
	return nil
}

// Clone returns a copy that shares no slices with r.
func (r *Report) Clone() *Report {
	c := *r
	if r.HighRiskSegments != nil {
		c.HighRiskSegments = append([]Segment(nil), r.HighRiskSegments...)
	}
	if r.Recommendations != nil {
		c.Recommendations = append([]string(nil), r.Recommendations...)
	}
	return &c
}

// Statistics is the city-wide accident summary.
type Statistics struct {
	TotalAccidents   int            `json:"total_accidents"`
	TotalBlackspots  int            `json:"total_blackspots"`
	Zones            map[string]int `json:"zones"`
	LastUpdated      string         `json:"last_updated"`
	UserReportsCount int            `json:"user_reports_count"`
}

// HeatmapPoint is one weighted point of the accident heatmap.
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity int     `json:"intensity"`
}

// NagpurStatistics returns the published baseline figures. The zones map is
// freshly allocated on every call.
func NagpurStatistics() Statistics {
	return Statistics{
		TotalAccidents:  327,
		TotalBlackspots: 23,
		Zones: map[string]int{
			"Pardi":      48,
			"Indora":     44,
			"Sitabuldi":  40,
			"Ajni":       46,
			"Dharampeth": 38,
			"Dhantoli":   32,
			"Sadar":      28,
			"Khamla":     24,
			"Others":     27,
		},
		LastUpdated: "2025-10-24",
	}
}
