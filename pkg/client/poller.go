package client

import (
	"context"
	"time"

	"saferoute/pkg/reports"
)

// DefaultPollInterval is how often recent reports are refreshed.
const DefaultPollInterval = 30 * time.Second

// RecentSource provides the recent-reports page.
type RecentSource interface {
	RecentReports(ctx context.Context, limit int) (*reports.RecentPage, error)
}

// Poller refreshes recent reports on a fixed interval. Failed fetches are
// passed to the error handler and retried at the next tick.
type Poller struct {
	src      RecentSource
	interval time.Duration
	limit    int
	onUpdate func(*reports.RecentPage)
	onError  func(error)
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the refresh interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLimit sets the page size.
func WithLimit(n int) PollerOption {
	return func(p *Poller) { p.limit = n }
}

// WithErrorHandler receives fetch errors.
func WithErrorHandler(fn func(error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

// NewPoller returns a poller that calls onUpdate with every fetched page.
func NewPoller(src RecentSource, onUpdate func(*reports.RecentPage), opts ...PollerOption) *Poller {
	p := &Poller{
		src:      src,
		interval: DefaultPollInterval,
		limit:    reports.DefaultRecentLimit,
		onUpdate: onUpdate,
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches immediately, then once per interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	page, err := p.src.RecentReports(ctx, p.limit)
	if err != nil {
		if ctx.Err() == nil {
			p.onError(err)
		}
		return
	}
	p.onUpdate(page)
}
