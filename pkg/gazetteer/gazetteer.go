// Package gazetteer stores named places in a compact columnar layout and
// answers nearest-place and name queries over them.
package gazetteer

import (
	"sort"

	"saferoute/pkg/osm"
)

// Gazetteer is a columnar list of named places. Names are concatenated
// into one byte slice; place i's name is Names[NameOff[i]:NameOff[i+1]].
type Gazetteer struct {
	Lat     []float64
	Lng     []float64
	Kind    []uint8
	NameOff []uint32 // len = Len()+1
	Names   []byte
}

// Build packs places into a Gazetteer. Exact duplicates (same name, kind
// and coordinates) are dropped; the result is sorted by name.
func Build(places []osm.Place) *Gazetteer {
	sorted := make([]osm.Place, len(places))
	copy(sorted, places)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		return a.Lng < b.Lng
	})

	g := &Gazetteer{NameOff: make([]uint32, 1, len(sorted)+1)}
	for i, p := range sorted {
		if p.Name == "" {
			continue
		}
		if i > 0 && p == sorted[i-1] {
			continue
		}
		g.Lat = append(g.Lat, p.Lat)
		g.Lng = append(g.Lng, p.Lng)
		g.Kind = append(g.Kind, uint8(p.Kind))
		g.Names = append(g.Names, p.Name...)
		g.NameOff = append(g.NameOff, uint32(len(g.Names)))
	}
	return g
}

// Len returns the number of places.
func (g *Gazetteer) Len() int { return len(g.Lat) }

// Name returns the name of place i.
func (g *Gazetteer) Name(i int) string {
	return string(g.Names[g.NameOff[i]:g.NameOff[i+1]])
}

// Place returns place i.
func (g *Gazetteer) Place(i int) osm.Place {
	return osm.Place{
		Name: g.Name(i),
		Kind: osm.Kind(g.Kind[i]),
		Lat:  g.Lat[i],
		Lng:  g.Lng[i],
	}
}
