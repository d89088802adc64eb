package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"saferoute/pkg/client"
	"saferoute/pkg/geo"
	"saferoute/pkg/geocode"
	"saferoute/pkg/mapview"
	"saferoute/pkg/reports"
	"saferoute/pkg/workflow"
)

const waitTimeout = 30 * time.Second

const helpText = `commands:
  click LAT LNG          click the map at a point
  find QUERY             search for a place
  pick N                 click the map at search result N
  origin | dest          re-pick the origin or destination
  check                  check route safety
  edit                   edit the route after a report
  reset                  start over
  wait                   wait for lookups and predictions to finish
  state                  show the current state
  render                 print the map as GeoJSON
  spots | stats | heatmap | reports [N]
  report LAT LNG SEVERITY LOCATION...
  quit`

type session struct {
	out        io.Writer
	wf         *workflow.Workflow
	m          *mapview.Map
	backend    client.Backend
	geocoder   geocode.Geocoder
	candidates []geocode.Place
}

func newSession(out io.Writer, wf *workflow.Workflow, m *mapview.Map, backend client.Backend, geocoder geocode.Geocoder) *session {
	return &session{out: out, wf: wf, m: m, backend: backend, geocoder: geocoder}
}

// run reads commands until quit, EOF or ctx ends.
func (s *session) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "SafeRoute Nagpur. Type help for commands.")
	s.printState(s.wf.Snapshot())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		quit, err := s.exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

func (s *session) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "state":
		s.printState(s.wf.Snapshot())
	case "click":
		c, err := parseCoordinate(args)
		if err != nil {
			return false, err
		}
		return false, s.click(c)
	case "find":
		return false, s.find(ctx, strings.Join(args, " "))
	case "pick":
		if len(args) != 1 {
			return false, errors.New("usage: pick N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(s.candidates) {
			return false, fmt.Errorf("no search result %q", args[0])
		}
		return false, s.click(s.candidates[n-1].Location)
	case "origin":
		return false, s.act(s.wf.SelectOrigin)
	case "dest", "destination":
		return false, s.act(s.wf.SelectDestination)
	case "check":
		return false, s.act(s.wf.CheckRoute)
	case "edit":
		return false, s.act(s.wf.EditRoute)
	case "reset":
		s.wf.Reset()
		s.printState(s.wf.Snapshot())
	case "wait":
		wctx, cancel := context.WithTimeout(ctx, waitTimeout)
		defer cancel()
		st, err := s.wf.WaitFor(wctx, func(st workflow.State) bool { return !st.Busy() })
		s.printState(st)
		return false, err
	case "render":
		return false, s.printJSON(s.m.Render())
	case "spots":
		spots, err := s.backend.Blackspots(ctx)
		if err != nil {
			return false, err
		}
		for _, b := range spots {
			fmt.Fprintf(s.out, "  %-28s %-11s %3d accidents  (%s)\n", b.Name, b.Zone, b.AccidentCount, b.Location)
		}
	case "stats":
		st, err := s.backend.Statistics(ctx)
		if err != nil {
			return false, err
		}
		return false, s.printJSON(st)
	case "heatmap":
		pts, err := s.backend.Heatmap(ctx)
		if err != nil {
			return false, err
		}
		return false, s.printJSON(pts)
	case "reports":
		limit := reports.DefaultRecentLimit
		if len(args) > 0 {
			if limit, err = strconv.Atoi(args[0]); err != nil {
				return false, fmt.Errorf("invalid limit %q", args[0])
			}
		}
		page, err := s.backend.RecentReports(ctx, limit)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%d report(s) in total\n", page.Total)
		for _, r := range page.Reports {
			fmt.Fprintf(s.out, "  #%d %s  %s, %s, %s\n", r.ID, r.Timestamp.Format(time.RFC3339), r.Location.Name, r.Severity, r.VehicleType)
		}
	case "report":
		return false, s.report(ctx, args)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func (s *session) click(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !s.m.Click(c) {
		return errors.New("map is not waiting for a point (try origin, dest or reset)")
	}
	s.printState(s.wf.Snapshot())
	return nil
}

func (s *session) act(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	s.printState(s.wf.Snapshot())
	return nil
}

func (s *session) find(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("usage: find QUERY")
	}
	places, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return err
	}
	s.candidates = places
	for i, p := range places {
		fmt.Fprintf(s.out, "  %d. %s (%s)\n", i+1, p.DisplayName, p.Location)
	}
	return nil
}

func (s *session) report(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return errors.New("usage: report LAT LNG SEVERITY LOCATION...")
	}
	c, err := parseCoordinate(args[:2])
	if err != nil {
		return err
	}
	d := reports.NewDraft()
	d.Location = c
	d.Severity = reports.Severity(strings.ToLower(args[2]))
	d.LocationName = strings.Join(args[3:], " ")

	res, err := s.backend.SubmitReport(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s (report #%d)\n", res.Message, res.ReportID)
	return nil
}

func (s *session) printJSON(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *session) printState(st workflow.State) {
	mapState := "shown"
	if !st.MapVisible {
		mapState = "hidden"
	}
	fmt.Fprintf(s.out, "[%s] map %s, %s\n", st.Phase, mapState, st.Selection)
	printPoint(s.out, "origin", st.Origin)
	printPoint(s.out, "destination", st.Destination)

	if r := st.Report; r != nil {
		fmt.Fprintf(s.out, "  safety score %.1f (%s), %s risk, %d predicted accident(s)\n",
			r.SafetyScore, r.Grade(), r.RiskLevel, r.PredictedAccidents)
		if r.Distance != "" {
			fmt.Fprintf(s.out, "  %s, %s\n", r.Distance, r.Duration)
		}
		for _, seg := range r.HighRiskSegments {
			fmt.Fprintf(s.out, "  ! %s: risk %.0f, %s\n", seg.Location, seg.RiskScore, seg.Reason)
		}
		for _, rec := range r.Recommendations {
			fmt.Fprintf(s.out, "  - %s\n", rec)
		}
	}
	if st.Err != "" {
		fmt.Fprintf(s.out, "  error: %s (reset to start over)\n", st.Err)
	}
	if st.CanCheckRoute() {
		fmt.Fprintln(s.out, "  ready: type check to score this route")
	}
}

func printPoint(w io.Writer, label string, p *workflow.LocatedPoint) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "  %s: %s (%s)\n", label, p.Address, p.Coordinate)
}

func parseCoordinate(args []string) (geo.Coordinate, error) {
	if len(args) != 2 {
		return geo.Coordinate{}, errors.New("expected LAT LNG")
	}
	lat, err := strconv.ParseFloat(strings.TrimSuffix(args[0], ","), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q", args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q", args[1])
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	return c, c.Validate()
}
