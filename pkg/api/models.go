package api

import (
	"saferoute/pkg/geo"
	"saferoute/pkg/safety"
)

// Version is reported by GET /.
const Version = "2.0.0"

// PredictRouteRequest is the JSON body for POST /predict/route.
type PredictRouteRequest struct {
	Origin      *geo.Coordinate `json:"origin"`
	Destination *geo.Coordinate `json:"destination"`
}

// InfoResponse is the JSON response for GET /.
type InfoResponse struct {
	Message         string   `json:"message"`
	Version         string   `json:"version"`
	Status          string   `json:"status"`
	TotalBlackspots int      `json:"total_blackspots"`
	UserReports     int      `json:"user_reports"`
	Endpoints       []string `json:"endpoints"`
}

// HeatmapResponse is the JSON response for GET /accidents/heatmap.
type HeatmapResponse struct {
	Data []safety.HeatmapPoint `json:"data"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
