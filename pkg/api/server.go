package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	MaxConcurrent  int
	CORSOrigin     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    2 * time.Minute,
		WriteTimeout:   2 * time.Minute,
		RequestTimeout: 5 * time.Second,
		UploadTimeout:  time.Minute,
		MaxConcurrent:  runtime.NumCPU() * 2,
		CORSOrigin:     "",
	}
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	mux := http.NewServeMux()

	// Concurrency limiter.
	sem := make(chan struct{}, cfg.MaxConcurrent)
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return withMiddleware(h, sem, cfg, cfg.RequestTimeout)
	}

	// Routes.
	mux.HandleFunc("GET /{$}", wrap(handlers.HandleInfo))
	mux.HandleFunc("GET /health", wrap(handlers.HandleHealth))
	mux.HandleFunc("GET /blackspots", wrap(handlers.HandleBlackspots))
	mux.HandleFunc("GET /stats", wrap(handlers.HandleStats))
	mux.HandleFunc("POST /predict/route", wrap(handlers.HandlePredictRoute))
	mux.HandleFunc("GET /accidents/heatmap", wrap(handlers.HandleHeatmap))
	mux.HandleFunc("POST /report/accident", withMiddleware(handlers.HandleReportAccident, sem, cfg, cfg.UploadTimeout))
	mux.HandleFunc("GET /reports/recent", wrap(handlers.HandleRecentReports))
	mux.HandleFunc("OPTIONS /predict/route", withHeaders(handlePreflight, cfg))
	mux.HandleFunc("OPTIONS /report/accident", withHeaders(handlePreflight, cfg))
	if handlers.live != nil {
		// Long-lived; outside the limiter and the request timeout.
		mux.HandleFunc("GET /reports/live", withHeaders(handlers.live.ServeHTTP, cfg))
	}

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// withHeaders sets security and CORS headers and logs the request.
func withHeaders(handler http.HandlerFunc, cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers.
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		// CORS.
		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		start := time.Now()
		handler(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	}
}

// withMiddleware adds recovery, concurrency limiting and a per-request
// timeout on top of withHeaders.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg ServerConfig, timeout time.Duration) http.HandlerFunc {
	return withHeaders(func(w http.ResponseWriter, r *http.Request) {
		// Concurrency limiter.
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", "")
			return
		}

		// Recovery.
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				writeError(w, http.StatusInternalServerError, "internal_error", "")
			}
		}()

		// Request timeout.
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		handler(w, r.WithContext(ctx))
	}, cfg)
}
