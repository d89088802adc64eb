package reports

import (
	"context"
	"fmt"
	"log"
	"time"

	"saferoute/pkg/geo"
)

// Service accepts drafts and stores them together with their media.
// Media upload and event publishing are optional.
type Service struct {
	store  Store
	media  MediaStore
	events Publisher
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMedia uploads attachments to m.
func WithMedia(m MediaStore) ServiceOption {
	return func(s *Service) { s.media = m }
}

// WithPublisher announces stored reports on p.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithClock overrides the time source for report timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService returns a service backed by store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates d, stores it and uploads its files. A failed upload is
// returned as an error after the report row exists. Publishing failures
// are only logged.
func (s *Service) Submit(ctx context.Context, d *Draft) (Report, error) {
	if err := d.Validate(); err != nil {
		return Report{}, err
	}

	r := d.Report(s.now())
	if err := s.store.Create(ctx, &r); err != nil {
		return Report{}, err
	}

	if s.media != nil {
		for i, f := range d.Files {
			if err := s.media.Put(ctx, r.Files[i].ObjectKey, f); err != nil {
				return r, fmt.Errorf("report %d: %w", r.ID, err)
			}
		}
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, r); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	return r, nil
}

// Recent returns the newest reports and the total count.
func (s *Service) Recent(ctx context.Context, limit int) (RecentPage, error) {
	rs, err := s.store.Recent(ctx, limit)
	if err != nil {
		return RecentPage{}, err
	}
	if rs == nil {
		rs = []Report{}
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return RecentPage{}, err
	}
	return RecentPage{Reports: rs, Total: total}, nil
}

// Count returns the number of stored reports.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// Locations returns the coordinates of every stored report.
func (s *Service) Locations(ctx context.Context) ([]geo.Coordinate, error) {
	return s.store.Locations(ctx)
}

// SubmitMessage is the confirmation shown after a successful submission.
func SubmitMessage(files int) string {
	return fmt.Sprintf("Report submitted with %d file(s)", files)
}
