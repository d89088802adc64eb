package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name             string
		a, b             Coordinate
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name:             "Civil Lines to Pardi",
			a:                Coordinate{Lat: 21.1458, Lng: 79.0882},
			b:                Coordinate{Lat: 21.0891, Lng: 79.0641},
			wantMeters:       6_782,
			tolerancePercent: 1,
		},
		{
			name:       "Same point",
			a:          NagpurCenter,
			b:          NagpurCenter,
			wantMeters: 0,
		},
		{
			name:             "Mumbai to Nagpur",
			a:                Coordinate{Lat: 19.0760, Lng: 72.8777},
			b:                NagpurCenter,
			wantMeters:       688_000,
			tolerancePercent: 1,
		},
		{
			name:             "Short distance (~100m)",
			a:                Coordinate{Lat: 21.1458, Lng: 79.0882},
			b:                Coordinate{Lat: 21.1467, Lng: 79.0882},
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Distance = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestSegmentDistance(t *testing.T) {
	a := Coordinate{Lat: 21.1400, Lng: 79.0800}
	b := Coordinate{Lat: 21.1500, Lng: 79.0800}

	tests := []struct {
		name      string
		p, a, b   Coordinate
		wantRatio float64
		maxDistM  float64
	}{
		{name: "Point at start of segment", p: a, a: a, b: b, wantRatio: 0, maxDistM: 1},
		{name: "Point at end of segment", p: b, a: a, b: b, wantRatio: 1, maxDistM: 1},
		{
			name:      "Point at midpoint perpendicular",
			p:         Coordinate{Lat: 21.1450, Lng: 79.0810},
			a:         a,
			b:         b,
			wantRatio: 0.5,
			maxDistM:  110, // ~104m east of the segment at this latitude
		},
		{
			name:      "Beyond the end clamps to 1",
			p:         Coordinate{Lat: 21.1600, Lng: 79.0800},
			a:         a,
			b:         b,
			wantRatio: 1,
			maxDistM:  1200,
		},
		{
			name:      "Degenerate segment (A == B)",
			p:         Coordinate{Lat: 21.1400, Lng: 79.0810},
			a:         a,
			b:         a,
			wantRatio: 0,
			maxDistM:  110,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, ratio := SegmentDistance(tt.p, tt.a, tt.b)
			if dist > tt.maxDistM {
				t.Errorf("dist = %f m, want <= %f m", dist, tt.maxDistM)
			}
			if math.Abs(ratio-tt.wantRatio) > 0.05 {
				t.Errorf("ratio = %f, want ~%f", ratio, tt.wantRatio)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want string
	}{
		{Coordinate{Lat: 21.0891, Lng: 79.0641}, "21.0891, 79.0641"},
		{Coordinate{Lat: 21.14583333, Lng: 79.08819999}, "21.1458, 79.0882"},
		{Coordinate{Lat: -1.5, Lng: 0}, "-1.5000, 0.0000"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"Nagpur", NagpurCenter, false},
		{"Latitude too high", Coordinate{Lat: 91, Lng: 79}, true},
		{"Longitude too low", Coordinate{Lat: 21, Lng: -181}, true},
		{"NaN", Coordinate{Lat: math.NaN(), Lng: 79}, true},
		{"Inf", Coordinate{Lat: 21, Lng: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("error %v does not wrap ErrInvalidCoordinate", err)
			}
		})
	}
}

func TestAroundContainsRadius(t *testing.T) {
	box := Around(NagpurCenter, 2000)
	north := Coordinate{Lat: NagpurCenter.Lat + 0.0179, Lng: NagpurCenter.Lng} // ~1990m
	if !box.Contains(north) {
		t.Errorf("box %+v should contain %+v", box, north)
	}
	farEast := Coordinate{Lat: NagpurCenter.Lat, Lng: NagpurCenter.Lng + 0.03} // ~3.1km
	if box.Contains(farEast) {
		t.Errorf("box %+v should not contain %+v", box, farEast)
	}
}

func BenchmarkDistance(b *testing.B) {
	a := Coordinate{Lat: 21.1458, Lng: 79.0882}
	c := Coordinate{Lat: 21.0891, Lng: 79.0641}
	for b.Loop() {
		Distance(a, c)
	}
}
