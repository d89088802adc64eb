// Package blackspot holds the Nagpur accident blackspot dataset and a
// spatial index over it.
package blackspot

import "saferoute/pkg/geo"

// Blackspot is a location with a recorded history of accidents.
type Blackspot struct {
	Name          string         `json:"name"`
	Location      geo.Coordinate `json:"location"`
	AccidentCount int            `json:"accident_count"`
	Zone          string         `json:"zone"`
	Description   string         `json:"description"`
}

// Tier groups blackspots by accident count for map styling.
type Tier int

const (
	TierLow Tier = iota
	TierElevated
	TierSevere
)

// Map marker colours per tier.
const (
	ColorSevere   = "#dc2626"
	ColorElevated = "#f59e0b"
	ColorLow      = "#3b82f6"
)

// MarkerRadiusMeters is the radius of the highlight circle drawn around
// each blackspot marker.
const MarkerRadiusMeters = 300

// TierOf returns the tier for an accident count: 10 or more is severe,
// 5 or more is elevated.
func TierOf(count int) Tier {
	switch {
	case count >= 10:
		return TierSevere
	case count >= 5:
		return TierElevated
	default:
		return TierLow
	}
}

// Color returns the marker colour of the tier.
func (t Tier) Color() string {
	switch t {
	case TierSevere:
		return ColorSevere
	case TierElevated:
		return ColorElevated
	default:
		return ColorLow
	}
}

func (t Tier) String() string {
	switch t {
	case TierSevere:
		return "severe"
	case TierElevated:
		return "elevated"
	default:
		return "low"
	}
}

// Nagpur returns a fresh copy of the seed dataset, ordered by accident
// count descending.
func Nagpur() []Blackspot {
	out := make([]Blackspot, len(nagpurSeed))
	copy(out, nagpurSeed)
	return out
}

var nagpurSeed = []Blackspot{
	{"Prakash High School to Kapsi Bridge (Pardi)", geo.Coordinate{Lat: 21.0891, Lng: 79.0641}, 15, "Pardi", "Highest accident rate in city"},
	{"Maruti Showroom Square (Indora)", geo.Coordinate{Lat: 21.1258, Lng: 79.0882}, 12, "Indora", "High traffic intersection"},
	{"Old Pardi Naka Square", geo.Coordinate{Lat: 21.0935, Lng: 79.0595}, 11, "Pardi", "Frequent collision point"},
	{"Shankar Nagar Square", geo.Coordinate{Lat: 21.1468, Lng: 79.0925}, 10, "Dharampeth", "Busy commercial area"},
	{"Variety Square", geo.Coordinate{Lat: 21.1507, Lng: 79.0883}, 9, "Sitabuldi", "Major traffic junction"},
	{"LIC Square", geo.Coordinate{Lat: 21.1417, Lng: 79.0906}, 8, "Sitabuldi", "Commercial district hotspot"},
	{"Kasturchand Park Square", geo.Coordinate{Lat: 21.1500, Lng: 79.0847}, 8, "Sitabuldi", "Central business district"},
	{"Hanuman Mandir Square (Pardi)", geo.Coordinate{Lat: 21.0889, Lng: 79.0658}, 7, "Pardi", "Temple area with heavy pedestrian traffic"},
	{"Seminary Hills Chowk", geo.Coordinate{Lat: 21.1357, Lng: 79.0447}, 6, "Dhantoli", "Residential area junction"},
	{"Rahate Colony Square", geo.Coordinate{Lat: 21.1213, Lng: 79.0475}, 6, "Dhantoli", "School zone area"},
	{"Ajni Square (Railway Station Road)", geo.Coordinate{Lat: 21.1425, Lng: 79.1156}, 6, "Ajni", "Near railway station"},
	{"Sitabuldi Interchange", geo.Coordinate{Lat: 21.1482, Lng: 79.0873}, 5, "Sitabuldi", "Major flyover intersection"},
	{"8th Mile Square, Amravati Road (Wadi)", geo.Coordinate{Lat: 21.2008, Lng: 79.0426}, 5, "Wadi", "Highway junction"},
	{"Cotton Market Square", geo.Coordinate{Lat: 21.1520, Lng: 79.0920}, 5, "Sitabuldi", "Market area congestion"},
	{"Mangalwari Square (Sadar)", geo.Coordinate{Lat: 21.1543, Lng: 79.0832}, 4, "Sadar", "Historical market junction"},
	{"Ambazari Road Junction", geo.Coordinate{Lat: 21.1287, Lng: 79.0354}, 4, "Dharampeth", "Lake area traffic point"},
	{"Ujwal Nagar Square", geo.Coordinate{Lat: 21.0952, Lng: 79.0423}, 4, "Dhantoli", "Residential junction"},
	{"Khamla Square", geo.Coordinate{Lat: 21.1615, Lng: 79.0561}, 3, "Khamla", "Outer ring road point"},
	{"Manish Nagar Square", geo.Coordinate{Lat: 21.0781, Lng: 79.0289}, 3, "Manish Nagar", "Residential area"},
	{"Mate Square (Nandanvan)", geo.Coordinate{Lat: 21.1678, Lng: 79.0982}, 3, "Nandanvan", "Growing residential zone"},
	{"Jaiprakash Nagar Square", geo.Coordinate{Lat: 21.1092, Lng: 79.0598}, 2, "Dharampeth", "Local market junction"},
	{"Friends Colony Square", geo.Coordinate{Lat: 21.0823, Lng: 79.0512}, 2, "Dhantoli", "Residential intersection"},
	{"Kachipura Square (Mominpura)", geo.Coordinate{Lat: 21.1623, Lng: 79.0828}, 2, "Mominpura", "Dense residential area"},
}
