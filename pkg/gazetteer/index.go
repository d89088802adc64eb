package gazetteer

import (
	"sort"
	"strings"

	"github.com/tidwall/rtree"

	"saferoute/pkg/geo"
	"saferoute/pkg/osm"
)

// Index is a spatial and name index over a Gazetteer. It is read-only and
// safe for concurrent use.
type Index struct {
	g     *Gazetteer
	tree  rtree.RTreeG[int]
	lower []string
}

// NewIndex builds the R-tree and lower-cased name table for g.
func NewIndex(g *Gazetteer) *Index {
	idx := &Index{g: g, lower: make([]string, g.Len())}
	for i := 0; i < g.Len(); i++ {
		p := [2]float64{g.Lng[i], g.Lat[i]}
		idx.tree.Insert(p, p, i)
		idx.lower[i] = strings.ToLower(g.Name(i))
	}
	return idx
}

// Len returns the number of indexed places.
func (idx *Index) Len() int { return idx.g.Len() }

// Nearest returns the closest place within maxMeters of c whose kind is
// one of kinds (any kind when none are given).
func (idx *Index) Nearest(c geo.Coordinate, maxMeters float64, kinds ...osm.Kind) (osm.Place, float64, bool) {
	box := geo.Around(c, maxMeters)
	best, bestDist := -1, maxMeters

	idx.tree.Search(
		[2]float64{box.MinLng, box.MinLat},
		[2]float64{box.MaxLng, box.MaxLat},
		func(_, _ [2]float64, i int) bool {
			if !kindAllowed(osm.Kind(idx.g.Kind[i]), kinds) {
				return true
			}
			d := geo.Distance(c, geo.Coordinate{Lat: idx.g.Lat[i], Lng: idx.g.Lng[i]})
			if d < bestDist || (d == bestDist && best >= 0 && i < best) {
				best, bestDist = i, d
			}
			return true
		},
	)

	if best < 0 {
		return osm.Place{}, 0, false
	}
	return idx.g.Place(best), bestDist, true
}

// Search returns up to limit places whose name contains query, ignoring
// case. Prefix matches rank first, then shorter names.
func (idx *Index) Search(query string, limit int) []osm.Place {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	type hit struct {
		i      int
		prefix bool
	}
	var hits []hit
	for i, name := range idx.lower {
		if pos := strings.Index(name, q); pos >= 0 {
			hits = append(hits, hit{i: i, prefix: pos == 0})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].prefix != hits[b].prefix {
			return hits[a].prefix
		}
		return len(idx.lower[hits[a].i]) < len(idx.lower[hits[b].i])
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]osm.Place, len(hits))
	for k, h := range hits {
		out[k] = idx.g.Place(h.i)
	}
	return out
}

func kindAllowed(k osm.Kind, kinds []osm.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
