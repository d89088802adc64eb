package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/client"
	"saferoute/pkg/gazetteer"
	"saferoute/pkg/geo"
	"saferoute/pkg/geocode"
	"saferoute/pkg/mapview"
	"saferoute/pkg/workflow"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	idx := blackspot.NewIndex(blackspot.Nagpur())
	backend := client.NewOffline(idx)
	g := geocode.NewGazetteer(gazetteer.NewIndex(gazetteer.Build(gazetteer.FromBlackspots(idx.All()))), "Nagpur")

	m := mapview.New(geo.NagpurCenter, mapview.DefaultZoom)
	m.SetBlackspots(idx.All())
	wf := workflow.New(g, backend, m)
	t.Cleanup(wf.Close)

	var out bytes.Buffer
	return newSession(&out, wf, m, backend, g), &out
}

func TestSessionScoresRoute(t *testing.T) {
	s, out := newTestSession(t)
	script := strings.Join([]string{
		"click 21.1458 79.0882",
		"wait",
		"click 21.1500, 79.1500",
		"wait",
		"quit",
	}, "\n")

	if err := s.run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"[report-ready] map hidden", "safety score", "Nagpur"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if s.wf.Predictions() != 1 {
		t.Errorf("predictions = %d, want 1", s.wf.Predictions())
	}
}

func TestSessionCommandErrors(t *testing.T) {
	s, out := newTestSession(t)
	ctx := context.Background()

	tests := []struct {
		line    string
		wantErr string
	}{
		{"click 21.1", "expected LAT LNG"},
		{"click abc 79", "invalid latitude"},
		{"click 95 79", "invalid coordinate"},
		{"pick 1", "no search result"},
		{"check", "origin and destination required"},
		{"frobnicate", "unknown command"},
		{"report 21.1 79.0", "usage: report"},
	}
	for _, tt := range tests {
		_, err := s.exec(ctx, tt.line)
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("exec(%q) error = %v, want %q", tt.line, err, tt.wantErr)
		}
	}
	if out.Len() != 0 {
		t.Errorf("failed commands wrote output: %s", out.String())
	}
}

func TestSessionFindAndPick(t *testing.T) {
	s, out := newTestSession(t)
	ctx := context.Background()

	if _, err := s.exec(ctx, "find variety"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(out.String(), "1. Variety Square, Nagpur") {
		t.Errorf("find output:\n%s", out.String())
	}
	if _, err := s.exec(ctx, "pick 1"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	st := s.wf.Snapshot()
	if st.Origin == nil || st.Origin.Lat != 21.1507 {
		t.Errorf("origin = %+v, want Variety Square", st.Origin)
	}
}

func TestSessionReport(t *testing.T) {
	s, out := newTestSession(t)
	ctx := context.Background()

	if _, err := s.exec(ctx, "report 21.1234 79.0712 severe Ajni Square"); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out.String(), "Report submitted with 0 file(s) (report #1)") {
		t.Errorf("output:\n%s", out.String())
	}

	out.Reset()
	if _, err := s.exec(ctx, "reports"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Ajni Square, severe") {
		t.Errorf("reports output:\n%s", out.String())
	}

	if _, err := s.exec(ctx, "report 21.1 79.0 apocalyptic Somewhere"); err == nil {
		t.Error("invalid severity accepted")
	}
}
