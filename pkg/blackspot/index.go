package blackspot

import (
	"sort"

	"github.com/tidwall/rtree"

	"saferoute/pkg/geo"
)

// Match is a blackspot found by a proximity query.
type Match struct {
	Blackspot
	DistanceMeters float64
	// Order is the blackspot's position in the slice given to NewIndex.
	Order int
}

// Index answers radius and corridor queries over a fixed set of blackspots.
// It is immutable after construction and safe for concurrent use.
type Index struct {
	spots []Blackspot
	tree  rtree.RTreeG[int]
}

// NewIndex builds an R-tree over spots. The slice is copied.
func NewIndex(spots []Blackspot) *Index {
	idx := &Index{spots: make([]Blackspot, len(spots))}
	copy(idx.spots, spots)
	for i, s := range idx.spots {
		p := [2]float64{s.Location.Lng, s.Location.Lat}
		idx.tree.Insert(p, p, i)
	}
	return idx
}

// All returns a copy of the indexed blackspots in insertion order.
func (idx *Index) All() []Blackspot {
	out := make([]Blackspot, len(idx.spots))
	copy(out, idx.spots)
	return out
}

// Len returns the number of indexed blackspots.
func (idx *Index) Len() int { return len(idx.spots) }

// Within returns the blackspots strictly closer than radiusMeters to c,
// nearest first.
func (idx *Index) Within(c geo.Coordinate, radiusMeters float64) []Match {
	var out []Match
	idx.search(geo.Around(c, radiusMeters), func(i int) {
		d := geo.Distance(c, idx.spots[i].Location)
		if d < radiusMeters {
			out = append(out, Match{Blackspot: idx.spots[i], DistanceMeters: d, Order: i})
		}
	})
	sortMatches(out)
	return out
}

// NearRoute returns the blackspots closer than radiusMeters to either
// endpoint, or closer than corridorMeters to the straight segment between
// them. A zero corridor checks the endpoints only. Each blackspot appears
// once, with its smallest distance.
func (idx *Index) NearRoute(origin, destination geo.Coordinate, radiusMeters, corridorMeters float64) []Match {
	box := union(geo.Around(origin, radiusMeters), geo.Around(destination, radiusMeters))
	if corridorMeters > 0 {
		box = union(box, union(geo.Around(origin, corridorMeters), geo.Around(destination, corridorMeters)))
	}

	var out []Match
	idx.search(box, func(i int) {
		loc := idx.spots[i].Location
		dOrigin := geo.Distance(origin, loc)
		dDest := geo.Distance(destination, loc)
		best := min(dOrigin, dDest)
		hit := dOrigin < radiusMeters || dDest < radiusMeters
		if corridorMeters > 0 {
			dSeg, _ := geo.SegmentDistance(loc, origin, destination)
			if dSeg < corridorMeters {
				hit = true
				best = min(best, dSeg)
			}
		}
		if hit {
			out = append(out, Match{Blackspot: idx.spots[i], DistanceMeters: best, Order: i})
		}
	})
	sortMatches(out)
	return out
}

func (idx *Index) search(b geo.BBox, fn func(i int)) {
	idx.tree.Search(
		[2]float64{b.MinLng, b.MinLat},
		[2]float64{b.MaxLng, b.MaxLat},
		func(_, _ [2]float64, i int) bool {
			fn(i)
			return true
		},
	)
}

func union(a, b geo.BBox) geo.BBox {
	return geo.BBox{
		MinLat: min(a.MinLat, b.MinLat),
		MaxLat: max(a.MaxLat, b.MaxLat),
		MinLng: min(a.MinLng, b.MinLng),
		MaxLng: max(a.MaxLng, b.MaxLng),
	}
}

// sortMatches orders by distance, then by name for a stable result.
func sortMatches(m []Match) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].DistanceMeters != m[j].DistanceMeters {
			return m[i].DistanceMeters < m[j].DistanceMeters
		}
		return m[i].Name < m[j].Name
	})
}
