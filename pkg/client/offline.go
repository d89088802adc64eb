package client

import (
	"context"
	"time"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

// Offline serves every Backend call locally: predictions from the
// blackspot scorer, reports from an in-memory store.
type Offline struct {
	index   *blackspot.Index
	scorer  *safety.Scorer
	reports *reports.Service
}

// NewOffline builds an offline backend over idx.
func NewOffline(idx *blackspot.Index, opts ...safety.ScorerOption) *Offline {
	return &Offline{
		index:   idx,
		scorer:  safety.NewScorer(idx, opts...),
		reports: reports.NewService(reports.NewMemoryStore()),
	}
}

func (o *Offline) PredictRoute(ctx context.Context, origin, destination geo.Coordinate) (*safety.Report, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if err := destination.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := o.scorer.Score(origin, destination)
	return &r, nil
}

func (o *Offline) Blackspots(context.Context) ([]blackspot.Blackspot, error) {
	return o.index.All(), nil
}

func (o *Offline) Statistics(ctx context.Context) (*safety.Statistics, error) {
	n, err := o.reports.Count(ctx)
	if err != nil {
		return nil, err
	}
	s := safety.NagpurStatistics().WithUserReports(n)
	return &s, nil
}

func (o *Offline) Heatmap(ctx context.Context) ([]safety.HeatmapPoint, error) {
	locs, err := o.reports.Locations(ctx)
	if err != nil {
		return nil, err
	}
	return safety.Heatmap(o.index.All(), locs), nil
}

func (o *Offline) RecentReports(ctx context.Context, limit int) (*reports.RecentPage, error) {
	page, err := o.reports.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (o *Offline) SubmitReport(ctx context.Context, d *reports.Draft) (*reports.SubmitResult, error) {
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}
	r, err := o.reports.Submit(ctx, d)
	if err != nil {
		return nil, err
	}
	return &reports.SubmitResult{
		Success:  true,
		Message:  reports.SubmitMessage(len(r.Files)),
		ReportID: r.ID,
	}, nil
}
