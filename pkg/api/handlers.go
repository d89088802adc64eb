package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

// RouteScorer scores an origin/destination pair.
type RouteScorer interface {
	Score(origin, destination geo.Coordinate) safety.Report
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	scorer  RouteScorer
	spots   *blackspot.Index
	reports *reports.Service
	live    *LiveHub
}

// NewHandlers creates handlers. live may be nil.
func NewHandlers(scorer RouteScorer, spots *blackspot.Index, svc *reports.Service, live *LiveHub) *Handlers {
	return &Handlers{
		scorer:  scorer,
		spots:   spots,
		reports: svc,
		live:    live,
	}
}

var endpoints = []string{
	"/blackspots", "/stats", "/predict/route", "/accidents/heatmap",
	"/report/accident", "/reports/recent", "/reports/live",
}

// HandleInfo handles GET /.
func (h *Handlers) HandleInfo(w http.ResponseWriter, r *http.Request) {
	n, err := h.reports.Count(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{
		Message:         "Nagpur Traffic Accident Prediction API",
		Version:         Version,
		Status:          "active",
		TotalBlackspots: h.spots.Len(),
		UserReports:     n,
		Endpoints:       endpoints,
	})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleBlackspots handles GET /blackspots.
func (h *Handlers) HandleBlackspots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.spots.All())
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.reports.Count(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, safety.NagpurStatistics().WithUserReports(n))
}

// HandleHeatmap handles GET /accidents/heatmap.
func (h *Handlers) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	locs, err := h.reports.Locations(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HeatmapResponse{Data: safety.Heatmap(h.spots.All(), locs)})
}

// HandlePredictRoute handles POST /predict/route.
func (h *Handlers) HandlePredictRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req PredictRouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if req.Origin == nil || req.Origin.Validate() != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "origin")
		return
	}
	if req.Destination == nil || req.Destination.Validate() != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "destination")
		return
	}

	report := h.scorer.Score(*req.Origin, *req.Destination)
	writeJSON(w, http.StatusOK, report)
}

// Upload limits for POST /report/accident.
const (
	maxUploadBytes  = reports.MaxFiles*reports.MaxVideoBytes + 1<<20
	multipartMemory = 32 << 20
)

// HandleReportAccident handles POST /report/accident.
func (h *Handlers) HandleReportAccident(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	d, field, err := draftFromForm(r)
	if err != nil {
		code := errorCode(err)
		if code == "internal_error" {
			code = "invalid_request"
		}
		writeError(w, http.StatusBadRequest, code, field)
		return
	}

	report, err := h.reports.Submit(r.Context(), d)
	if err != nil {
		log.Printf("Error: failed to submit report: %v", err)
		writeJSON(w, http.StatusInternalServerError, reports.SubmitResult{
			Success: false,
			Message: fmt.Sprintf("Failed to submit report: %v", err),
		})
		return
	}

	log.Printf("New accident report: %s (%s) with %d file(s)", report.Location.Name, report.Severity, len(report.Files))
	if h.live != nil {
		h.live.Publish(report)
	}

	writeJSON(w, http.StatusCreated, reports.SubmitResult{
		Success:  true,
		Message:  reports.SubmitMessage(len(report.Files)),
		ReportID: report.ID,
	})
}

// HandleRecentReports handles GET /reports/recent.
func (h *Handlers) HandleRecentReports(w http.ResponseWriter, r *http.Request) {
	limit := reports.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit")
			return
		}
		limit = n
	}

	page, err := h.reports.Recent(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// draftFromForm reads the report form. On error it also returns the name of
// the offending field.
func draftFromForm(r *http.Request) (*reports.Draft, string, error) {
	d := reports.NewDraft()

	lat, err := strconv.ParseFloat(r.FormValue("lat"), 64)
	if err != nil {
		return nil, "lat", geo.ErrInvalidCoordinate
	}
	lng, err := strconv.ParseFloat(r.FormValue("lng"), 64)
	if err != nil {
		return nil, "lng", geo.ErrInvalidCoordinate
	}
	d.Location = geo.Coordinate{Lat: lat, Lng: lng}
	d.LocationName = r.FormValue("location")

	if v := r.FormValue("severity"); v != "" {
		d.Severity = reports.Severity(v)
	}
	if v := r.FormValue("vehicleType"); v != "" {
		d.VehicleType = v
	}
	if v := r.FormValue("casualties"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, "casualties", reports.ErrInvalidCasualties
		}
		d.Casualties = n
	}
	d.Description = r.FormValue("description")
	d.ReporterName = r.FormValue("reporterName")
	d.ReporterContact = r.FormValue("reporterContact")
	if ts, err := time.Parse(time.RFC3339, r.FormValue("timestamp")); err == nil {
		d.Timestamp = ts
	}

	for i := 0; i < reports.MaxFiles+1; i++ {
		name := fmt.Sprintf("file%d", i)
		f, hdr, err := r.FormFile(name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, name, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, name, err
		}
		err = d.AddFile(reports.Attachment{
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Data:        data,
		})
		if err != nil {
			return nil, name, err
		}
	}

	if err := d.Validate(); err != nil {
		return nil, validationField(err), err
	}
	return d, "", nil
}

func validationField(err error) string {
	switch {
	case errors.Is(err, reports.ErrLocationRequired):
		return "location"
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return "location"
	case errors.Is(err, reports.ErrInvalidSeverity):
		return "severity"
	case errors.Is(err, reports.ErrInvalidVehicleType):
		return "vehicleType"
	case errors.Is(err, reports.ErrInvalidCasualties):
		return "casualties"
	}
	return ""
}

// errorCode maps report errors to API error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, reports.ErrTooManyFiles):
		return "too_many_files"
	case errors.Is(err, reports.ErrUnsupportedMedia):
		return "unsupported_media_type"
	case errors.Is(err, reports.ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(err, reports.ErrLocationRequired):
		return "location_required"
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return "invalid_coordinates"
	case errors.Is(err, reports.ErrInvalidSeverity),
		errors.Is(err, reports.ErrInvalidVehicleType),
		errors.Is(err, reports.ErrInvalidCasualties):
		return "invalid_field"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "request_timeout"
	}
	return "internal_error"
}

func internalError(w http.ResponseWriter, err error) {
	log.Printf("Error: %v", err)
	if code := errorCode(err); code == "request_timeout" {
		writeError(w, http.StatusServiceUnavailable, code, "")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
