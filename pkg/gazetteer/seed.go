package gazetteer

import (
	"saferoute/pkg/blackspot"
	"saferoute/pkg/osm"
)

// FromBlackspots returns places for a gazetteer built without an OSM
// extract: each blackspot as a landmark and each zone as an area at the
// centroid of its blackspots.
func FromBlackspots(spots []blackspot.Blackspot) []osm.Place {
	type acc struct {
		lat, lng float64
		n        int
	}
	zones := make(map[string]*acc)
	var order []string

	places := make([]osm.Place, 0, len(spots))
	for _, s := range spots {
		places = append(places, osm.Place{
			Name: s.Name,
			Kind: osm.KindLandmark,
			Lat:  s.Location.Lat,
			Lng:  s.Location.Lng,
		})
		if s.Zone == "" {
			continue
		}
		z, ok := zones[s.Zone]
		if !ok {
			z = &acc{}
			zones[s.Zone] = z
			order = append(order, s.Zone)
		}
		z.lat += s.Location.Lat
		z.lng += s.Location.Lng
		z.n++
	}
	for _, name := range order {
		z := zones[name]
		places = append(places, osm.Place{
			Name: name,
			Kind: osm.KindArea,
			Lat:  z.lat / float64(z.n),
			Lng:  z.lng / float64(z.n),
		})
	}
	return places
}
