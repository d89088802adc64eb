// Command routecheck is an interactive route-safety checker for Nagpur.
// Points are picked by typing coordinates or searching place names, and
// the route is scored against the backend or the bundled dataset.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/client"
	"saferoute/pkg/config"
	"saferoute/pkg/gazetteer"
	"saferoute/pkg/geo"
	"saferoute/pkg/geocode"
	"saferoute/pkg/mapview"
	"saferoute/pkg/reports"
	"saferoute/pkg/workflow"
)

func main() {
	config.LoadDotEnv()
	env := config.Load()

	apiURL := flag.String("api", env.APIURL, "Backend base URL")
	offline := flag.Bool("offline", env.Offline, "Score routes locally from the bundled blackspot data")
	fallback := flag.Bool("read-fallback", env.ReadFallback, "Serve blackspots and statistics from bundled data when the backend fails")
	nominatimURL := flag.String("nominatim", env.NominatimURL, "Nominatim base URL")
	gazetteerPath := flag.String("gazetteer", env.GazetteerPath, "Offline gazetteer built by cmd/gazetteer (overrides Nominatim)")
	watch := flag.Bool("watch", false, "Print new community reports as they arrive")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idx := blackspot.NewIndex(blackspot.Nagpur())
	local := client.NewOffline(idx)

	// Backend.
	var backend client.Backend
	switch {
	case *offline:
		log.Println("Offline mode: scoring routes from bundled blackspot data")
		backend = local
	case *fallback:
		backend = client.WithReadFallback(client.NewHTTP(*apiURL, client.WithTimeout(env.HTTPTimeout)), local)
	default:
		backend = client.NewHTTP(*apiURL, client.WithTimeout(env.HTTPTimeout))
	}

	// Geocoder.
	var geocoder geocode.Geocoder
	switch {
	case *gazetteerPath != "":
		g, err := gazetteer.ReadBinary(*gazetteerPath)
		if err != nil {
			log.Fatalf("Failed to load gazetteer: %v", err)
		}
		log.Printf("Loaded gazetteer: %d places", g.Len())
		geocoder = geocode.NewGazetteer(gazetteer.NewIndex(g), "Nagpur")
	case *offline:
		g := gazetteer.Build(gazetteer.FromBlackspots(idx.All()))
		geocoder = geocode.NewGazetteer(gazetteer.NewIndex(g), "Nagpur")
	default:
		geocoder = geocode.NewNominatim(*nominatimURL, geocode.WithViewbox(geo.NagpurBBox))
	}

	m := mapview.New(geo.NagpurCenter, mapview.DefaultZoom)
	spots, err := backend.Blackspots(ctx)
	if err != nil {
		log.Printf("Warning: blackspots unavailable: %v", err)
	}
	m.SetBlackspots(spots)

	wf := workflow.New(geocoder, backend, m, workflow.WithContext(ctx))
	defer wf.Close()

	if *watch {
		seen := int64(0)
		p := client.NewPoller(backend, func(page *reports.RecentPage) {
			for i := len(page.Reports) - 1; i >= 0; i-- {
				r := page.Reports[i]
				if r.ID > seen {
					seen = r.ID
					log.Printf("Community report #%d: %s (%s, %s)", r.ID, r.Location.Name, r.Severity, r.VehicleType)
				}
			}
		}, client.WithInterval(env.PollInterval), client.WithErrorHandler(func(err error) {
			log.Printf("Warning: refreshing reports: %v", err)
		}))
		go p.Run(ctx)
	}

	s := newSession(os.Stdout, wf, m, backend, geocoder)
	if err := s.run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatalf("routecheck: %v", err)
	}
}
