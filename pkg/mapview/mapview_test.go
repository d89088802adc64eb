package mapview

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/paulmach/orb"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
)

func TestSelectionString(t *testing.T) {
	tests := []struct {
		sel  Selection
		want string
	}{
		{PickNone, "none"},
		{PickOrigin, "picking-origin"},
		{PickDestination, "picking-destination"},
	}
	for _, tt := range tests {
		if got := tt.sel.String(); got != tt.want {
			t.Errorf("Selection(%d).String() = %q, want %q", tt.sel, got, tt.want)
		}
	}
}

func TestClick(t *testing.T) {
	m := New(geo.NagpurCenter, DefaultZoom)

	var mu sync.Mutex
	var got []Selection
	m.OnClick(func(sel Selection, c geo.Coordinate) {
		mu.Lock()
		got = append(got, sel)
		mu.Unlock()
	})

	c := geo.Coordinate{Lat: 21.15, Lng: 79.09}

	if m.Click(c) {
		t.Error("unarmed map delivered click")
	}

	m.Arm(PickOrigin)
	if !m.Click(c) {
		t.Error("armed map dropped click")
	}

	m.Hide()
	if m.Click(c) {
		t.Error("hidden map delivered click")
	}
	m.Show()

	m.Arm(PickDestination)
	m.Click(c)

	m.Arm(PickNone)
	m.Click(c)

	if len(got) != 2 || got[0] != PickOrigin || got[1] != PickDestination {
		t.Errorf("delivered selections = %v, want [picking-origin picking-destination]", got)
	}
}

func TestClick_HandlerMayReenter(t *testing.T) {
	m := New(geo.NagpurCenter, DefaultZoom)
	m.Arm(PickOrigin)
	m.OnClick(func(sel Selection, c geo.Coordinate) {
		// Re-arming from inside the handler must not deadlock.
		m.Arm(PickDestination)
		m.SetRoute(&Marker{Location: c, Label: "Loading…"}, nil)
	})

	m.Click(geo.NagpurCenter)
	if m.Armed() != PickDestination {
		t.Errorf("Armed = %v, want picking-destination", m.Armed())
	}
}

func TestRecenterAndFocus(t *testing.T) {
	m := New(geo.NagpurCenter, DefaultZoom)
	c, z := m.View()
	if c != geo.NagpurCenter || z != 12 {
		t.Errorf("initial view = %v @ %d", c, z)
	}

	spot := blackspot.Nagpur()[0]
	m.Focus(spot)
	c, z = m.View()
	if c != spot.Location || z != SelectedZoom {
		t.Errorf("after Focus view = %v @ %d, want %v @ %d", c, z, spot.Location, SelectedZoom)
	}
}

func TestRender(t *testing.T) {
	m := New(geo.NagpurCenter, DefaultZoom)
	m.SetBlackspots([]blackspot.Blackspot{
		{Name: "A", Location: geo.Coordinate{Lat: 21.1, Lng: 79.1}, AccidentCount: 12},
		{Name: "B", Location: geo.Coordinate{Lat: 21.2, Lng: 79.2}, AccidentCount: 2},
	})

	fc := m.Render()
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}
	first := fc.Features[0]
	if first.Properties["color"] != "#dc2626" {
		t.Errorf("color = %v, want #dc2626", first.Properties["color"])
	}
	if first.Properties["radius_m"] != 300 {
		t.Errorf("radius_m = %v, want 300", first.Properties["radius_m"])
	}
	if p, ok := first.Geometry.(orb.Point); !ok || p.Lon() != 79.1 || p.Lat() != 21.1 {
		t.Errorf("geometry = %v, want point (79.1, 21.1)", first.Geometry)
	}
	if fc.Features[1].Properties["color"] != "#3b82f6" {
		t.Errorf("low tier color = %v", fc.Features[1].Properties["color"])
	}

	// Origin only: marker, no line.
	origin := &Marker{Location: geo.Coordinate{Lat: 21.1458, Lng: 79.0882}, Label: "Civil Lines, Nagpur"}
	m.SetRoute(origin, nil)
	fc = m.Render()
	if len(fc.Features) != 3 {
		t.Fatalf("features with origin = %d, want 3", len(fc.Features))
	}

	// Both: two markers and the line.
	m.SetRoute(origin, &Marker{Location: geo.Coordinate{Lat: 21.0891, Lng: 79.0641}, Label: "Pardi, Nagpur"})
	fc = m.Render()
	if len(fc.Features) != 5 {
		t.Fatalf("features with route = %d, want 5", len(fc.Features))
	}
	line := fc.Features[4]
	if line.Properties["kind"] != "route" {
		t.Errorf("last feature kind = %v, want route", line.Properties["kind"])
	}
	if ls, ok := line.Geometry.(orb.LineString); !ok || len(ls) != 2 {
		t.Errorf("route geometry = %v", line.Geometry)
	}

	if _, err := json.Marshal(fc); err != nil {
		t.Errorf("marshal: %v", err)
	}
}

func TestSetRouteCopies(t *testing.T) {
	m := New(geo.NagpurCenter, DefaultZoom)
	mk := &Marker{Label: "Loading…"}
	m.SetRoute(mk, nil)
	mk.Label = "changed"

	origin, dest := m.Route()
	if origin.Label != "Loading…" {
		t.Errorf("marker aliased caller value: %q", origin.Label)
	}
	if dest != nil {
		t.Errorf("destination = %+v, want nil", dest)
	}
}
