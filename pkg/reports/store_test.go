package reports

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		id    int64
		index int
		name  string
		want  string
	}{
		{7, 0, "crash.jpg", "reports/7/0_crash.jpg"},
		{7, 4, "../../etc/passwd", "reports/7/4_passwd"},
		{12, 1, `dir\clip.mp4`, "reports/12/1_clip.mp4"},
		{1, 2, "", "reports/1/2_file"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.id, tt.index, tt.name); got != tt.want {
			t.Errorf("ObjectKey(%d, %d, %q) = %q, want %q", tt.id, tt.index, tt.name, got, tt.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{-1: 10, 0: 10, 1: 1, 25: 25, 100: 100, 500: 100}
	for in, want := range tests {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 10, 24, 8, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		r := Report{
			Location:    Location{Lat: 21.14, Lng: 79.08, Name: name},
			Severity:    SeverityModerate,
			VehicleType: VehicleCar,
			Reporter:    Reporter{Name: AnonymousReporter},
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
			Files:       []File{{Filename: "a.jpg", Type: "image", Size: 10}},
			Status:      StatusPending,
		}
		if err := s.Create(ctx, &r); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
		if r.ID == 0 {
			t.Fatalf("Create(%s) did not assign an ID", name)
		}
		if want := ObjectKey(r.ID, 0, "a.jpg"); r.Files[0].ObjectKey != want {
			t.Errorf("object key = %q, want %q", r.Files[0].ObjectKey, want)
		}
	}

	n, err := s.Count(ctx)
	if err != nil || n < 3 {
		t.Fatalf("Count() = %d, %v; want at least 3", n, err)
	}

	locs, err := s.Locations(ctx)
	if err != nil || len(locs) != n {
		t.Fatalf("Locations() = %d points, %v; want %d", len(locs), err, n)
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d reports", len(recent))
	}
	if !recent[0].Timestamp.After(recent[1].Timestamp) && !recent[0].Timestamp.Equal(recent[1].Timestamp) {
		t.Errorf("Recent not newest first: %v then %v", recent[0].Timestamp, recent[1].Timestamp)
	}
	if len(recent[0].Files) != 1 || recent[0].Files[0].ObjectKey == "" {
		t.Errorf("files not round-tripped: %+v", recent[0].Files)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)

	recent, _ := s.Recent(context.Background(), 0)
	if len(recent) != 3 {
		t.Fatalf("Recent(0) returned %d, want 3", len(recent))
	}
	if recent[0].Location.Name != "third" || recent[2].Location.Name != "first" {
		t.Errorf("order = %s, %s, %s", recent[0].Location.Name, recent[1].Location.Name, recent[2].Location.Name)
	}
	if recent[2].ID != 1 {
		t.Errorf("first ID = %d, want 1", recent[2].ID)
	}
}

func TestMemoryStoreTiesNewestIDFirst(t *testing.T) {
	s := NewMemoryStore()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.Create(context.Background(), &Report{Timestamp: ts})
	}
	recent, _ := s.Recent(context.Background(), 10)
	if recent[0].ID != 3 || recent[2].ID != 1 {
		t.Errorf("IDs = %d, %d, %d; want 3, 2, 1", recent[0].ID, recent[1].ID, recent[2].ID)
	}
}

func TestMemoryStoreIsolatesCallerSlices(t *testing.T) {
	s := NewMemoryStore()
	r := Report{Files: []File{{Filename: "a.jpg"}}}
	s.Create(context.Background(), &r)
	r.Files[0].Filename = "changed.jpg"

	recent, _ := s.Recent(context.Background(), 1)
	if recent[0].Files[0].Filename != "a.jpg" {
		t.Errorf("stored file renamed through caller slice: %q", recent[0].Files[0].Filename)
	}
}

// Runs against a real database when SAFEROUTE_TEST_DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SAFEROUTE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SAFEROUTE_TEST_DATABASE_URL not set")
	}
	s, err := NewPostgresStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	defer s.Close()
	testStore(t, s)
}
