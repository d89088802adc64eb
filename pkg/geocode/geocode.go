// Package geocode resolves coordinates to human-readable addresses and
// place queries to coordinates.
package geocode

import (
	"context"
	"errors"
	"strings"

	"saferoute/pkg/geo"
)

// ErrNotFound is returned when a lookup completes but yields no place.
var ErrNotFound = errors.New("no place found")

// Address is the result of a reverse lookup.
type Address struct {
	DisplayName string
	Road        string
	Suburb      string
	City        string
}

// Place is one candidate of a forward lookup.
type Place struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Location    geo.Coordinate `json:"location"`
}

// Reverser turns a coordinate into an address.
type Reverser interface {
	Reverse(ctx context.Context, c geo.Coordinate) (Address, error)
}

// Searcher turns free text into candidate places.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// Geocoder does both directions.
type Geocoder interface {
	Reverser
	Searcher
}

// ShortLabel returns the first two comma-separated segments of a display
// name, trimmed: "Civil Lines, Nagpur, Maharashtra" becomes
// "Civil Lines, Nagpur".
func ShortLabel(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// Label resolves c to its short label, or to the formatted coordinate when
// the lookup fails for any reason. It never returns an empty string.
func Label(ctx context.Context, r Reverser, c geo.Coordinate) (short, full string) {
	addr, err := r.Reverse(ctx, c)
	if err == nil {
		if short = ShortLabel(addr.DisplayName); short != "" {
			return short, addr.DisplayName
		}
	}
	fallback := c.String()
	return fallback, fallback
}
