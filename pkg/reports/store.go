package reports

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"saferoute/pkg/geo"
)

// DefaultRecentLimit and MaxRecentLimit bound Recent queries.
const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Store persists reports.
type Store interface {
	// Create assigns r an ID and object keys for its files, then stores it.
	Create(ctx context.Context, r *Report) error
	// Recent returns up to limit reports, newest first.
	Recent(ctx context.Context, limit int) ([]Report, error)
	// Count returns the number of stored reports.
	Count(ctx context.Context) (int, error)
	// Locations returns the coordinates of every stored report.
	Locations(ctx context.Context) ([]geo.Coordinate, error)
}

// ObjectKey returns the storage key for file index of report id.
func ObjectKey(id int64, index int, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("reports/%d/%d_%s", id, index, name)
}

func assignKeys(r *Report) {
	for i := range r.Files {
		r.Files[i].ObjectKey = ObjectKey(r.ID, i, r.Files[i].Filename)
	}
}

// ClampLimit maps a requested page size into [1, MaxRecentLimit], using
// DefaultRecentLimit for non-positive values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

// MemoryStore keeps reports in memory. IDs start at 1.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []Report
	nextID  int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Create(_ context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	assignKeys(r)

	stored := *r
	stored.Files = append([]File(nil), r.Files...)
	s.reports = append(s.reports, stored)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Report, error) {
	s.mu.RLock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if limit = ClampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports), nil
}

func (s *MemoryStore) Locations(_ context.Context) ([]geo.Coordinate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geo.Coordinate, len(s.reports))
	for i, r := range s.reports {
		out[i] = r.Location.Coordinate()
	}
	return out, nil
}
