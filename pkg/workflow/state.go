package workflow

import (
	"saferoute/pkg/geo"
	"saferoute/pkg/mapview"
	"saferoute/pkg/safety"
)

// Placeholder is the address shown while a point's lookup is in flight.
const Placeholder = "Loading…"

// Phase is the single source of truth for where the workflow is.
type Phase int

const (
	AwaitingOrigin Phase = iota
	ResolvingOrigin
	AwaitingDestination
	ResolvingDestination
	ReadyToPredict
	Predicting
	ReportReady
	Error
)

var phaseNames = [...]string{
	AwaitingOrigin:       "awaiting-origin",
	ResolvingOrigin:      "resolving-origin",
	AwaitingDestination:  "awaiting-destination",
	ResolvingDestination: "resolving-destination",
	ReadyToPredict:       "ready-to-predict",
	Predicting:           "predicting",
	ReportReady:          "report-ready",
	Error:                "error",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Selection derives the map selection mode from the phase. Only the two
// awaiting phases arm the map.
func (p Phase) Selection() mapview.Selection {
	switch p {
	case AwaitingOrigin:
		return mapview.PickOrigin
	case AwaitingDestination:
		return mapview.PickDestination
	default:
		return mapview.PickNone
	}
}

// mapVisible reports whether the map is shown in phase p. The map is
// hidden from the moment a prediction starts until edit or reset.
func (p Phase) mapVisible() bool {
	switch p {
	case Predicting, ReportReady, Error:
		return false
	default:
		return true
	}
}

// LocatedPoint is a route endpoint and its human-readable address.
type LocatedPoint struct {
	geo.Coordinate
	Address     string
	FullAddress string
	Settled     bool
}

// State is an immutable snapshot of the workflow.
type State struct {
	Phase       Phase
	Origin      *LocatedPoint
	Destination *LocatedPoint
	Report      *safety.Report
	Err         string
	MapVisible  bool
	Selection   mapview.Selection
}

// Busy reports whether a lookup or prediction is in flight.
func (s State) Busy() bool {
	switch s.Phase {
	case ResolvingOrigin, ResolvingDestination, Predicting:
		return true
	}
	return false
}

// CanCheckRoute reports whether the manual "check route safety" action is
// offered: both points settled, map shown, nothing in flight.
func (s State) CanCheckRoute() bool {
	return bothSettled(s.Origin, s.Destination) && s.MapVisible && !s.Busy()
}

// Grade is the report's letter grade, or "" without a report.
func (s State) Grade() string {
	if s.Report == nil {
		return ""
	}
	return s.Report.Grade()
}

func bothSettled(origin, destination *LocatedPoint) bool {
	return origin != nil && origin.Settled && destination != nil && destination.Settled
}

// shouldPredict is the auto-advance guard, evaluated after every update.
func shouldPredict(phase Phase, origin, destination *LocatedPoint, report *safety.Report, inFlight bool) bool {
	return phase == ReadyToPredict && bothSettled(origin, destination) && report == nil && !inFlight
}

func clonePoint(p *LocatedPoint) *LocatedPoint {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
