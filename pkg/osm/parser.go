package osm

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"saferoute/pkg/geo"
)

// Kind classifies a named place.
type Kind uint8

const (
	KindArea     Kind = iota + 1 // suburb, neighbourhood, locality
	KindLandmark                 // junctions, stations, schools, markets
	KindRoad                     // named road, located at its middle node
)

func (k Kind) String() string {
	switch k {
	case KindArea:
		return "area"
	case KindLandmark:
		return "landmark"
	case KindRoad:
		return "road"
	default:
		return "unknown"
	}
}

// Place is a named point extracted from OSM data.
type Place struct {
	Name string
	Kind Kind
	Lat  float64
	Lng  float64
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Places []Place
}

// areaPlaces lists place tag values treated as areas.
var areaPlaces = map[string]bool{
	"city":          true,
	"town":          true,
	"suburb":        true,
	"quarter":       true,
	"neighbourhood": true,
	"locality":      true,
	"village":       true,
	"hamlet":        true,
}

// landmarkAmenities lists amenity values worth naming a location after.
var landmarkAmenities = map[string]bool{
	"school":           true,
	"college":          true,
	"university":       true,
	"hospital":         true,
	"bus_station":      true,
	"marketplace":      true,
	"place_of_worship": true,
	"police":           true,
	"fuel":             true,
}

// namedRoads lists highway values whose names are useful as addresses.
var namedRoads = map[string]bool{
	"motorway":     true,
	"trunk":        true,
	"primary":      true,
	"secondary":    true,
	"tertiary":     true,
	"unclassified": true,
	"residential":  true,
}

// nodeKind returns the kind of a named node, or false if the node is not
// a place of interest.
func nodeKind(tags osm.Tags) (Kind, bool) {
	if tags.Find("name") == "" {
		return 0, false
	}
	if areaPlaces[tags.Find("place")] {
		return KindArea, true
	}
	if landmarkAmenities[tags.Find("amenity")] {
		return KindLandmark, true
	}
	switch {
	case tags.Find("junction") != "",
		tags.Find("highway") == "traffic_signals",
		tags.Find("railway") == "station",
		tags.Find("public_transport") == "station":
		return KindLandmark, true
	}
	return 0, false
}

// isNamedRoad returns true if the way is a named road for cars.
func isNamedRoad(tags osm.Tags) bool {
	if tags.Find("name") == "" {
		return false
	}
	if !namedRoads[tags.Find("highway")] {
		return false
	}
	return tags.Find("area") != "yes"
}

// roadInfo holds a named way collected during Pass 1.
type roadInfo struct {
	Name string
	Mid  osm.NodeID
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox geo.BBox // if non-zero, drop places outside the box
}

// Parse reads an OSM PBF file and returns named places for the gazetteer.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	// Pass 1: Scan ways to collect named roads and their middle node.
	midNodes := make(map[osm.NodeID]struct{})
	var roads []roadInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) == 0 {
			continue
		}
		if !isNamedRoad(w.Tags) {
			continue
		}
		mid := w.Nodes[len(w.Nodes)/2].ID
		midNodes[mid] = struct{}{}
		roads = append(roads, roadInfo{Name: w.Tags.Find("name"), Mid: mid})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d named roads", len(roads))

	// Pass 2: Scan nodes for named places and road middle coordinates.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	midCoords := make(map[osm.NodeID]geo.Coordinate, len(midNodes))
	var places []Place
	var bboxFiltered int

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		c := geo.Coordinate{Lat: n.Lat, Lng: n.Lon}

		if _, needed := midNodes[n.ID]; needed {
			midCoords[n.ID] = c
		}

		kind, ok := nodeKind(n.Tags)
		if !ok {
			continue
		}
		if useBBox && !opt.BBox.Contains(c) {
			bboxFiltered++
			continue
		}
		places = append(places, Place{Name: n.Tags.Find("name"), Kind: kind, Lat: n.Lat, Lng: n.Lon})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d named nodes, %d road coordinates collected", len(places), len(midCoords))

	var skippedRoads int
	for _, r := range roads {
		c, ok := midCoords[r.Mid]
		if !ok {
			skippedRoads++
			continue
		}
		if useBBox && !opt.BBox.Contains(c) {
			bboxFiltered++
			continue
		}
		places = append(places, Place{Name: r.Name, Kind: KindRoad, Lat: c.Lat, Lng: c.Lng})
	}

	if skippedRoads > 0 {
		log.Printf("Warning: skipped %d roads due to missing node coordinates", skippedRoads)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d places outside bounding box", bboxFiltered)
	}
	log.Printf("Extracted %d places", len(places))

	return &ParseResult{Places: places}, nil
}
