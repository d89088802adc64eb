// Package client talks to the SafeRoute backend. HTTP is the live API
// client; Offline answers the same calls from the bundled dataset.
package client

import (
	"context"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

// Backend is everything the app asks of the backend.
type Backend interface {
	PredictRoute(ctx context.Context, origin, destination geo.Coordinate) (*safety.Report, error)
	Blackspots(ctx context.Context) ([]blackspot.Blackspot, error)
	Statistics(ctx context.Context) (*safety.Statistics, error)
	Heatmap(ctx context.Context) ([]safety.HeatmapPoint, error)
	RecentReports(ctx context.Context, limit int) (*reports.RecentPage, error)
	SubmitReport(ctx context.Context, d *reports.Draft) (*reports.SubmitResult, error)
}

// PredictRequest is the body of POST /predict/route.
type PredictRequest struct {
	Origin      geo.Coordinate `json:"origin"`
	Destination geo.Coordinate `json:"destination"`
}

// HeatmapResponse is the body of GET /accidents/heatmap.
type HeatmapResponse struct {
	Data []safety.HeatmapPoint `json:"data"`
}
