package geocode

import (
	"context"
	"strings"

	"saferoute/pkg/gazetteer"
	"saferoute/pkg/geo"
	"saferoute/pkg/osm"
)

const (
	// featureRadiusMeters bounds how far a landmark or road may be from
	// the clicked point to name it.
	featureRadiusMeters = 1500.0
	areaRadiusMeters    = 3000.0
	offlineSearchLimit  = 5
)

// Gazetteer geocodes against a local place index, with no network access.
type Gazetteer struct {
	idx  *gazetteer.Index
	city string
}

// NewGazetteer wraps idx. city is appended to every display name.
func NewGazetteer(idx *gazetteer.Index, city string) *Gazetteer {
	return &Gazetteer{idx: idx, city: city}
}

// Reverse names c after the nearest landmark or road and the surrounding
// area, e.g. "Variety Square, Sitabuldi, Nagpur".
func (g *Gazetteer) Reverse(ctx context.Context, c geo.Coordinate) (Address, error) {
	if err := ctx.Err(); err != nil {
		return Address{}, err
	}

	var parts []string
	var addr Address

	feature, _, hasFeature := g.idx.Nearest(c, featureRadiusMeters, osm.KindLandmark, osm.KindRoad)
	if hasFeature {
		parts = append(parts, feature.Name)
		if feature.Kind == osm.KindRoad {
			addr.Road = feature.Name
		}
	}
	area, _, hasArea := g.idx.Nearest(c, areaRadiusMeters, osm.KindArea)
	if hasArea && !(hasFeature && strings.EqualFold(area.Name, feature.Name)) {
		parts = append(parts, area.Name)
		addr.Suburb = area.Name
	}
	if len(parts) == 0 {
		return Address{}, ErrNotFound
	}
	if g.city != "" {
		parts = append(parts, g.city)
		addr.City = g.city
	}
	addr.DisplayName = strings.Join(parts, ", ")
	return addr, nil
}

// Search matches query against place names.
func (g *Gazetteer) Search(ctx context.Context, query string) ([]Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := g.idx.Search(query, offlineSearchLimit)
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	places := make([]Place, len(found))
	for i, p := range found {
		display := p.Name
		if g.city != "" {
			display += ", " + g.city
		}
		places[i] = Place{
			Name:        p.Name,
			DisplayName: display,
			Location:    geo.Coordinate{Lat: p.Lat, Lng: p.Lng},
		}
	}
	return places, nil
}
