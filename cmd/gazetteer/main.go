package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"saferoute/pkg/gazetteer"
	"saferoute/pkg/geo"
	osmparser "saferoute/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "gazetteer.bin", "Output gazetteer file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 20.95,78.90,21.30,79.25)")
	nagpur := flag.Bool("nagpur", false, "Shortcut for --bbox 20.95,78.90,21.30,79.25 (Nagpur bounding box)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: gazetteer --input <file.osm.pbf> [--output gazetteer.bin] [--nagpur | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	// Parse bbox option.
	var opts osmparser.ParseOptions
	if *nagpur {
		opts.BBox = geo.NagpurBBox
		log.Println("Using Nagpur bounding box filter: lat [20.95, 21.30], lng [78.90, 79.25]")
	} else if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = geo.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()

	// Step 1: Parse OSM data.
	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Extracting named places...")
	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	counts := make(map[osmparser.Kind]int)
	for _, p := range parseResult.Places {
		counts[p.Kind]++
	}
	log.Printf("Parsed %d places (%d areas, %d landmarks, %d roads)", len(parseResult.Places),
		counts[osmparser.KindArea], counts[osmparser.KindLandmark], counts[osmparser.KindRoad])

	// Step 2: Build gazetteer.
	g := gazetteer.Build(parseResult.Places)
	log.Printf("Gazetteer: %d unique places", g.Len())

	// Step 3: Serialize to binary.
	log.Printf("Writing binary to %s...", *output)
	if err := gazetteer.WriteBinary(*output, g); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f KB)", elapsed.Round(time.Second), *output, float64(info.Size())/1024)
}
