package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"saferoute/pkg/blackspot"
	"saferoute/pkg/geo"
	"saferoute/pkg/reports"
	"saferoute/pkg/safety"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

// APIError is a non-2xx response. Error returns the server's message when
// it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTP is the live backend client.
type HTTP struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// Option configures an HTTP client.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) { h.client = &http.Client{Timeout: d} }
}

// NewHTTP returns a client for the API at baseURL.
func NewHTTP(baseURL string, opts ...Option) *HTTP {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) PredictRoute(ctx context.Context, origin, destination geo.Coordinate) (*safety.Report, error) {
	body, err := json.Marshal(PredictRequest{Origin: origin, Destination: destination})
	if err != nil {
		return nil, err
	}
	var r safety.Report
	if err := h.do(ctx, http.MethodPost, "/predict/route", "application/json", bytes.NewReader(body), &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &r, nil
}

func (h *HTTP) Blackspots(ctx context.Context) ([]blackspot.Blackspot, error) {
	var spots []blackspot.Blackspot
	if err := h.do(ctx, http.MethodGet, "/blackspots", "", nil, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

func (h *HTTP) Statistics(ctx context.Context) (*safety.Statistics, error) {
	var s safety.Statistics
	if err := h.do(ctx, http.MethodGet, "/stats", "", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (h *HTTP) Heatmap(ctx context.Context) ([]safety.HeatmapPoint, error) {
	var resp HeatmapResponse
	if err := h.do(ctx, http.MethodGet, "/accidents/heatmap", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (h *HTTP) RecentReports(ctx context.Context, limit int) (*reports.RecentPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(reports.ClampLimit(limit)))

	var page reports.RecentPage
	if err := h.do(ctx, http.MethodGet, "/reports/recent?"+params.Encode(), "", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SubmitReport posts d as a multipart form with the attachments in fields
// file0 through file4.
func (h *HTTP) SubmitReport(ctx context.Context, d *reports.Draft) (*reports.SubmitResult, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	ts := d.Timestamp
	if ts.IsZero() {
		ts = h.now()
	}
	fields := []struct{ name, value string }{
		{"lat", strconv.FormatFloat(d.Location.Lat, 'f', -1, 64)},
		{"lng", strconv.FormatFloat(d.Location.Lng, 'f', -1, 64)},
		{"location", d.LocationName},
		{"severity", string(d.Severity)},
		{"vehicleType", d.VehicleType},
		{"casualties", strconv.Itoa(d.Casualties)},
		{"description", d.Description},
		{"reporterName", d.ReporterName},
		{"reporterContact", d.ReporterContact},
		{"timestamp", ts.UTC().Format(time.RFC3339)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.name, err)
		}
	}

	for i, f := range d.Files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file%d"; filename=%q`, i, f.Filename))
		hdr.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, fmt.Errorf("encoding file%d: %w", i, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("encoding file%d: %w", i, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var res reports.SubmitResult
	if err := h.do(ctx, http.MethodPost, "/report/accident", mw.FormDataContentType(), &buf, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTP) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: serverMessage(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// serverMessage extracts a human readable message from an error body.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Field   string `json:"field"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Detail != "":
		return body.Detail
	case body.Error != "" && body.Field != "":
		return body.Error + ": " + body.Field
	default:
		return body.Error
	}
}
