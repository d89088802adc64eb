package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"saferoute/pkg/api"
	"saferoute/pkg/blackspot"
	"saferoute/pkg/config"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

func main() {
	config.LoadDotEnv()
	env := config.Load()

	port := flag.Int("port", env.Port, "HTTP port")
	corsOrigin := flag.String("cors-origin", env.CORSOrigin, "CORS allowed origin (empty = same-origin)")
	corridor := flag.Float64("corridor", 0, "Also count blackspots within this many meters of the straight route (0 = endpoints only)")
	flag.Parse()

	start := time.Now()
	ctx := context.Background()

	// Blackspot index and scorer.
	idx := blackspot.NewIndex(blackspot.Nagpur())
	log.Printf("Indexed %d blackspots", idx.Len())
	scorer := safety.NewScorer(idx, safety.WithCorridor(*corridor))

	// Report storage.
	var store reports.Store = reports.NewMemoryStore()
	if env.UsePostgres() {
		pg, err := reports.NewPostgresStore(ctx, env.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open report store: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		log.Println("DATABASE_URL not set, keeping reports in memory")
	}

	var opts []reports.ServiceOption
	if env.UseMinIO() {
		media, err := reports.NewMinIOStore(ctx, reports.MinIOConfig{
			Endpoint:  env.MinIOEndpoint,
			AccessKey: env.MinIOAccessKey,
			SecretKey: env.MinIOSecretKey,
			UseSSL:    env.MinIOUseSSL,
			Bucket:    env.MinIOBucket,
		})
		if err != nil {
			log.Fatalf("Failed to open media store: %v", err)
		}
		opts = append(opts, reports.WithMedia(media))
		log.Printf("Uploading report media to %s/%s", env.MinIOEndpoint, env.MinIOBucket)
	}
	if env.UseKafka() {
		pub := reports.NewKafkaPublisher(env.KafkaBroker, env.KafkaTopic)
		defer pub.Close()
		opts = append(opts, reports.WithPublisher(pub))
		log.Printf("Publishing report events to %s (%s)", env.KafkaBroker, env.KafkaTopic)
	}
	svc := reports.NewService(store, opts...)

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(scorer, idx, svc, api.NewLiveHub(*corsOrigin))
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
