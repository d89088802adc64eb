package client

import (
	"context"
	"log"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

type readFallback struct {
	primary  Backend
	fallback Backend
}

// WithReadFallback serves blackspots, statistics and the heatmap from
// fallback when primary fails. Predictions and reports always go to
// primary and surface its errors.
func WithReadFallback(primary, fallback Backend) Backend {
	return &readFallback{primary: primary, fallback: fallback}
}

func (b *readFallback) PredictRoute(ctx context.Context, origin, destination geo.Coordinate) (*safety.Report, error) {
	return b.primary.PredictRoute(ctx, origin, destination)
}

func (b *readFallback) Blackspots(ctx context.Context) ([]blackspot.Blackspot, error) {
	spots, err := b.primary.Blackspots(ctx)
	if err != nil {
		log.Printf("Blackspots unavailable (%v), using bundled data", err)
		return b.fallback.Blackspots(ctx)
	}
	return spots, nil
}

func (b *readFallback) Statistics(ctx context.Context) (*safety.Statistics, error) {
	s, err := b.primary.Statistics(ctx)
	if err != nil {
		log.Printf("Statistics unavailable (%v), using bundled data", err)
		return b.fallback.Statistics(ctx)
	}
	return s, nil
}

func (b *readFallback) Heatmap(ctx context.Context) ([]safety.HeatmapPoint, error) {
	pts, err := b.primary.Heatmap(ctx)
	if err != nil {
		log.Printf("Heatmap unavailable (%v), using bundled data", err)
		return b.fallback.Heatmap(ctx)
	}
	return pts, nil
}

func (b *readFallback) RecentReports(ctx context.Context, limit int) (*reports.RecentPage, error) {
	return b.primary.RecentReports(ctx, limit)
}

func (b *readFallback) SubmitReport(ctx context.Context, d *reports.Draft) (*reports.SubmitResult, error) {
	return b.primary.SubmitReport(ctx, d)
}
