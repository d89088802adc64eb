package client

import (
	"context"
	"errors"
	"testing"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

func newOffline() *Offline {
	return NewOffline(blackspot.NewIndex(blackspot.Nagpur()))
}

func TestOfflinePredictMatchesScorer(t *testing.T) {
	o := newOffline()
	origin := geo.Coordinate{Lat: 21.1498, Lng: 79.0806}
	dest := geo.Coordinate{Lat: 21.1500, Lng: 79.1500}

	got, err := o.PredictRoute(context.Background(), origin, dest)
	if err != nil {
		t.Fatal(err)
	}
	want := safety.NewScorer(blackspot.NewIndex(blackspot.Nagpur())).Score(origin, dest)
	if got.SafetyScore != want.SafetyScore || got.RiskLevel != want.RiskLevel || got.RouteID != want.RouteID {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestOfflinePredictRejectsInvalid(t *testing.T) {
	_, err := newOffline().PredictRoute(context.Background(), geo.Coordinate{Lat: 91}, geo.NagpurCenter)
	if !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("error = %v, want ErrInvalidCoordinate", err)
	}
}

func TestOfflineReportsFeedStatsAndHeatmap(t *testing.T) {
	o := newOffline()
	ctx := context.Background()

	stats, _ := o.Statistics(ctx)
	if stats.TotalAccidents != 327 || stats.UserReportsCount != 0 {
		t.Fatalf("initial stats = %+v", stats)
	}
	heat, _ := o.Heatmap(ctx)
	if len(heat) != 23 {
		t.Fatalf("initial heatmap has %d points, want 23", len(heat))
	}

	d := reports.NewDraft()
	d.LocationName = "Ajni Square"
	d.Location = geo.Coordinate{Lat: 21.1234, Lng: 79.0712}
	res, err := o.SubmitReport(ctx, d)
	if err != nil {
		t.Fatalf("SubmitReport() error = %v", err)
	}
	if !res.Success || res.ReportID != 1 || res.Message != "Report submitted with 0 file(s)" {
		t.Errorf("result = %+v", res)
	}

	stats, _ = o.Statistics(ctx)
	if stats.TotalAccidents != 328 || stats.UserReportsCount != 1 {
		t.Errorf("stats after report = %+v", stats)
	}
	heat, _ = o.Heatmap(ctx)
	if len(heat) != 24 || heat[23].Intensity != 1 || heat[23].Lat != 21.1234 {
		t.Errorf("heatmap tail = %+v", heat[len(heat)-1])
	}
	page, _ := o.RecentReports(ctx, 10)
	if page.Total != 1 || page.Reports[0].Reporter.Name != reports.AnonymousReporter {
		t.Errorf("recent = %+v", page)
	}
}
