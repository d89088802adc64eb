package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
)

// Render returns the overlays as a FeatureCollection: one point per
// blackspot, the route markers, and the straight line between them when
// both exist. Every feature carries a "kind" property.
func (m *Map) Render() *geojson.FeatureCollection {
	m.mu.Lock()
	spots := append([]blackspot.Blackspot(nil), m.spots...)
	origin, destination := cloneMarker(m.origin), cloneMarker(m.destination)
	m.mu.Unlock()

	fc := geojson.NewFeatureCollection()

	for _, s := range spots {
		tier := blackspot.TierOf(s.AccidentCount)
		f := geojson.NewFeature(point(s.Location))
		f.Properties["kind"] = "blackspot"
		f.Properties["name"] = s.Name
		f.Properties["zone"] = s.Zone
		f.Properties["description"] = s.Description
		f.Properties["accident_count"] = s.AccidentCount
		f.Properties["tier"] = tier.String()
		f.Properties["color"] = tier.Color()
		f.Properties["radius_m"] = blackspot.MarkerRadiusMeters
		fc.Append(f)
	}

	if origin != nil {
		fc.Append(markerFeature("origin", *origin, OriginColor))
	}
	if destination != nil {
		fc.Append(markerFeature("destination", *destination, DestinationColor))
	}
	if origin != nil && destination != nil {
		line := geojson.NewFeature(orb.LineString{point(origin.Location), point(destination.Location)})
		line.Properties["kind"] = "route"
		line.Properties["color"] = RouteColor
		fc.Append(line)
	}

	return fc
}

func markerFeature(kind string, mk Marker, color string) *geojson.Feature {
	f := geojson.NewFeature(point(mk.Location))
	f.Properties["kind"] = kind
	f.Properties["label"] = mk.Label
	f.Properties["coordinates"] = mk.Location.String()
	f.Properties["color"] = color
	return f
}

// point converts to orb's lng/lat order.
func point(c geo.Coordinate) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}
