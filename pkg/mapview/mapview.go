// Package mapview is a headless map surface: it tracks the viewport, the
// route markers and the blackspot overlay, delivers clicks while armed for
// a selection, and renders its overlays as GeoJSON.
package mapview

import (
	"sync"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
)

// Zoom levels used by the UI.
const (
	DefaultZoom  = 12
	FocusZoom    = 13
	SelectedZoom = 15
)

// Overlay colours.
const (
	OriginColor      = "#10b981"
	DestinationColor = "#ef4444"
	RouteColor       = "#3b82f6"
)

// Selection is what the next click on the map will set.
type Selection int

const (
	PickNone Selection = iota
	PickOrigin
	PickDestination
)

func (s Selection) String() string {
	switch s {
	case PickOrigin:
		return "picking-origin"
	case PickDestination:
		return "picking-destination"
	default:
		return "none"
	}
}

// Marker is a labelled route endpoint.
type Marker struct {
	Location geo.Coordinate
	Label    string
}

// ClickFunc receives a click together with the selection the map was armed
// for when the click happened.
type ClickFunc func(sel Selection, c geo.Coordinate)

// Map is safe for concurrent use. Click handlers run outside the lock and
// may call back into the Map.
type Map struct {
	mu          sync.Mutex
	center      geo.Coordinate
	zoom        int
	visible     bool
	armed       Selection
	onClick     ClickFunc
	origin      *Marker
	destination *Marker
	spots       []blackspot.Blackspot
}

// New creates a visible, unarmed map.
func New(center geo.Coordinate, zoom int) *Map {
	return &Map{center: center, zoom: zoom, visible: true}
}

// OnClick registers the click handler, replacing any previous one.
func (m *Map) OnClick(fn ClickFunc) {
	m.mu.Lock()
	m.onClick = fn
	m.mu.Unlock()
}

// Arm sets the selection delivered with subsequent clicks. PickNone
// disarms the map.
func (m *Map) Arm(sel Selection) {
	m.mu.Lock()
	m.armed = sel
	m.mu.Unlock()
}

// Armed returns the current selection.
func (m *Map) Armed() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

// Click simulates a user click at c. It reports whether the click was
// delivered; clicks on a hidden or unarmed map are dropped.
func (m *Map) Click(c geo.Coordinate) bool {
	m.mu.Lock()
	sel, fn := m.armed, m.onClick
	ok := m.visible && sel != PickNone && fn != nil
	m.mu.Unlock()

	if !ok {
		return false
	}
	fn(sel, c)
	return true
}

// SetRoute replaces both route markers. Either may be nil.
func (m *Map) SetRoute(origin, destination *Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origin = cloneMarker(origin)
	m.destination = cloneMarker(destination)
}

// Route returns copies of the current route markers.
func (m *Map) Route() (origin, destination *Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMarker(m.origin), cloneMarker(m.destination)
}

// SetBlackspots replaces the blackspot overlay.
func (m *Map) SetBlackspots(spots []blackspot.Blackspot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spots = append(m.spots[:0:0], spots...)
}

// Recenter moves the viewport.
func (m *Map) Recenter(c geo.Coordinate, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.center = c
	m.zoom = zoom
}

// Focus centres the map on a blackspot picked from the list.
func (m *Map) Focus(b blackspot.Blackspot) {
	m.Recenter(b.Location, SelectedZoom)
}

// View returns the viewport.
func (m *Map) View() (geo.Coordinate, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center, m.zoom
}

// Show makes the map visible.
func (m *Map) Show() {
	m.mu.Lock()
	m.visible = true
	m.mu.Unlock()
}

// Hide hides the map. Hidden maps drop clicks.
func (m *Map) Hide() {
	m.mu.Lock()
	m.visible = false
	m.mu.Unlock()
}

// Visible reports whether the map is shown.
func (m *Map) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

func cloneMarker(mk *Marker) *Marker {
	if mk == nil {
		return nil
	}
	c := *mk
	return &c
}
