// Package workflow implements the route-safety check: the user picks an
// origin and a destination on the map, each is reverse geocoded, and once
// both addresses settle the route is sent for a safety prediction.
package workflow

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"saferoute/pkg/geo"
	"saferoute/pkg/geocode"
	"saferoute/pkg/mapview"
	"saferoute/pkg/safety"
)

var (
	// ErrPointsMissing is returned when an action needs points that are not
	// set or not yet settled.
	ErrPointsMissing = errors.New("origin and destination required")
	// ErrBusy is returned while a lookup or prediction is in flight.
	ErrBusy = errors.New("lookup or prediction in progress")
	// ErrNotEditable is returned when the route cannot be changed in the
	// current phase.
	ErrNotEditable = errors.New("route not editable in current phase")
	// ErrClosed is returned by WaitFor once the workflow is closed.
	ErrClosed = errors.New("workflow closed")
)

// Predictor produces a Safety Report for a route.
type Predictor interface {
	PredictRoute(ctx context.Context, origin, destination geo.Coordinate) (*safety.Report, error)
}

// Surface is the map the workflow drives.
type Surface interface {
	OnClick(fn mapview.ClickFunc)
	Arm(sel mapview.Selection)
	SetRoute(origin, destination *mapview.Marker)
	Show()
	Hide()
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithCallTimeout bounds each lookup and prediction. Zero leaves the
// transport's own timeout in charge.
func WithCallTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.callTimeout = d }
}

// WithContext sets the parent context of all asynchronous calls.
func WithContext(ctx context.Context) Option {
	return func(w *Workflow) { w.parent = ctx }
}

// Workflow is the route-safety state machine. All methods are safe for
// concurrent use.
type Workflow struct {
	resolver  geocode.Reverser
	predictor Predictor
	surface   Surface

	parent      context.Context
	callTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	mu          sync.Mutex
	phase       Phase
	origin      *LocatedPoint
	destination *LocatedPoint
	report      *safety.Report
	errText     string
	inFlight    bool
	gen         uint64
	predictions int
	closed      bool
	changed     chan struct{}
}

// New creates a workflow in AwaitingOrigin with the map shown and armed
// for the origin, and registers itself as the surface's click handler.
func New(resolver geocode.Reverser, predictor Predictor, surface Surface, opts ...Option) *Workflow {
	w := &Workflow{
		resolver:  resolver,
		predictor: predictor,
		surface:   surface,
		parent:    context.Background(),
		changed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.ctx, w.cancel = context.WithCancel(w.parent)

	w.mu.Lock()
	w.syncSurface()
	w.mu.Unlock()

	surface.OnClick(w.HandleClick)
	return w
}

// HandleClick applies a map click. Clicks are accepted only in the two
// awaiting phases and only when sel matches the phase; anything else is
// ignored.
func (w *Workflow) HandleClick(sel mapview.Selection, c geo.Coordinate) {
	if err := c.Validate(); err != nil {
		log.Printf("workflow: ignoring click: %v", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || sel == mapview.PickNone || sel != w.phase.Selection() {
		return
	}

	point := &LocatedPoint{Coordinate: c, Address: Placeholder}
	switch w.phase {
	case AwaitingOrigin:
		w.origin = point
		w.phase = ResolvingOrigin
	case AwaitingDestination:
		w.destination = point
		w.phase = ResolvingDestination
	default:
		return
	}

	w.gen++
	w.lookup(w.gen, w.phase, c)
	w.publish()
}

// SelectOrigin re-arms the map for a new origin. The current points stay
// until replaced.
func (w *Workflow) SelectOrigin() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditable(); err != nil {
		return err
	}
	w.gen++
	w.phase = AwaitingOrigin
	w.publish()
	return nil
}

// SelectDestination re-arms the map for a new destination, keeping the
// origin. It requires an origin.
func (w *Workflow) SelectDestination() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditable(); err != nil {
		return err
	}
	if w.origin == nil || !w.origin.Settled {
		return ErrPointsMissing
	}
	w.gen++
	w.phase = AwaitingDestination
	w.publish()
	return nil
}

// CheckRoute requests a prediction for the current points. It is offered
// when both points are settled and the map is shown, which after EditRoute
// re-checks the retained pair.
func (w *Workflow) CheckRoute() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditable(); err != nil {
		return err
	}
	if !bothSettled(w.origin, w.destination) {
		return ErrPointsMissing
	}
	w.phase = ReadyToPredict
	w.publish()
	return nil
}

// EditRoute leaves the report view: the report is discarded, the map is
// shown again with both points retained, and the map is armed for a new
// origin.
func (w *Workflow) EditRoute() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != ReportReady {
		return ErrNotEditable
	}
	w.gen++
	w.report = nil
	w.phase = AwaitingOrigin
	w.publish()
	return nil
}

// Reset returns to the initial state from any phase. Calls still in flight
// are not cancelled; their results are discarded when they arrive.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.gen++
	w.phase = AwaitingOrigin
	w.origin = nil
	w.destination = nil
	w.report = nil
	w.errText = ""
	w.inFlight = false
	w.publish()
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Predictions returns how many predictions have been issued.
func (w *Workflow) Predictions() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.predictions
}

// WaitFor blocks until cond holds for the current state or ctx ends. It
// returns ErrClosed if the workflow is closed while cond does not hold.
func (w *Workflow) WaitFor(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		w.mu.Lock()
		s := w.snapshotLocked()
		ch := w.changed
		closed := w.closed
		w.mu.Unlock()

		if cond(s) {
			return s, nil
		}
		if closed {
			return s, ErrClosed
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-ch:
		}
	}
}

// Close cancels in-flight calls and waits for them to return. Results that
// arrive after Close are discarded and pending WaitFor calls return
// ErrClosed.
func (w *Workflow) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.changed)
		w.changed = make(chan struct{})
	}
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}

func (w *Workflow) checkEditable() error {
	switch w.phase {
	case ResolvingOrigin, ResolvingDestination, Predicting:
		return ErrBusy
	case ReportReady, Error:
		return ErrNotEditable
	}
	return nil
}

// lookup reverse geocodes c in the background. Caller holds w.mu.
func (w *Workflow) lookup(token uint64, phase Phase, c geo.Coordinate) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := w.callContext()
		defer cancel()
		short, full := geocode.Label(ctx, w.resolver, c)

		w.mu.Lock()
		defer w.mu.Unlock()
		w.settleLookup(token, phase, short, full)
	}()
}

func (w *Workflow) settleLookup(token uint64, phase Phase, short, full string) {
	if w.closed || token != w.gen || w.phase != phase {
		return
	}

	switch phase {
	case ResolvingOrigin:
		w.origin.Address, w.origin.FullAddress, w.origin.Settled = short, full, true
		if w.destination != nil && w.destination.Settled {
			w.phase = ReadyToPredict
		} else {
			w.phase = AwaitingDestination
		}
	case ResolvingDestination:
		w.destination.Address, w.destination.FullAddress, w.destination.Settled = short, full, true
		w.phase = ReadyToPredict
	}
	w.publish()
}

// predict issues the prediction in the background. Caller holds w.mu.
func (w *Workflow) predict(token uint64, origin, destination geo.Coordinate) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := w.callContext()
		defer cancel()
		report, err := w.predictor.PredictRoute(ctx, origin, destination)

		w.mu.Lock()
		defer w.mu.Unlock()
		w.settlePrediction(token, report, err)
	}()
}

func (w *Workflow) settlePrediction(token uint64, report *safety.Report, err error) {
	if w.closed || token != w.gen || w.phase != Predicting {
		return
	}
	w.inFlight = false

	if err == nil && report == nil {
		err = errors.New("empty prediction response")
	}
	if err == nil {
		err = report.Validate()
	}
	if err != nil {
		log.Printf("workflow: prediction failed: %v", err)
		w.errText = err.Error()
		w.phase = Error
	} else {
		w.report = report
		w.phase = ReportReady
	}
	w.publish()
}

func (w *Workflow) callContext() (context.Context, context.CancelFunc) {
	if w.callTimeout > 0 {
		return context.WithTimeout(w.ctx, w.callTimeout)
	}
	return context.WithCancel(w.ctx)
}

// publish runs the auto-advance guard, pushes the state to the map and
// wakes waiters. Caller holds w.mu.
func (w *Workflow) publish() {
	if !w.closed && shouldPredict(w.phase, w.origin, w.destination, w.report, w.inFlight) {
		w.phase = Predicting
		w.inFlight = true
		w.predictions++
		w.gen++
		w.predict(w.gen, w.origin.Coordinate, w.destination.Coordinate)
	}

	w.syncSurface()
	close(w.changed)
	w.changed = make(chan struct{})
}

// syncSurface pushes markers, visibility and arming to the map. Caller
// holds w.mu.
func (w *Workflow) syncSurface() {
	w.surface.SetRoute(marker(w.origin), marker(w.destination))
	if w.phase.mapVisible() {
		w.surface.Show()
	} else {
		w.surface.Hide()
	}
	w.surface.Arm(w.phase.Selection())
}

func (w *Workflow) snapshotLocked() State {
	s := State{
		Phase:       w.phase,
		Origin:      clonePoint(w.origin),
		Destination: clonePoint(w.destination),
		Err:         w.errText,
		MapVisible:  w.phase.mapVisible(),
		Selection:   w.phase.Selection(),
	}
	if w.report != nil {
		s.Report = w.report.Clone()
	}
	return s
}

func marker(p *LocatedPoint) *mapview.Marker {
	if p == nil {
		return nil
	}
	return &mapview.Marker{Location: p.Coordinate, Label: p.Address}
}
