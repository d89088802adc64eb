package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"saferoute/pkg/geo"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	defaultUserAgent = "saferoute-nagpur/1.0"
	maxResponseBytes = 1 << 20
	searchLimit      = 5
)

// Nominatim is a client for the Nominatim reverse and search endpoints.
// It makes a single attempt per call. There is no retry and no cache.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	viewbox   geo.BBox
}

// NominatimOption configures a Nominatim client.
type NominatimOption func(*Nominatim)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) NominatimOption {
	return func(n *Nominatim) { n.client = c }
}

// WithUserAgent sets the User-Agent header. The public instance rejects
// requests without one.
func WithUserAgent(ua string) NominatimOption {
	return func(n *Nominatim) { n.userAgent = ua }
}

// WithViewbox restricts forward search to b. Defaults to Nagpur.
func WithViewbox(b geo.BBox) NominatimOption {
	return func(n *Nominatim) { n.viewbox = b }
}

// NewNominatim creates a client for the instance at baseURL.
func NewNominatim(baseURL string, opts ...NominatimOption) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	n := &Nominatim{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		client:    http.DefaultClient,
		viewbox:   geo.NagpurBBox,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road          string `json:"road"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		City          string `json:"city"`
		Town          string `json:"town"`
	} `json:"address"`
	Error string `json:"error"`
}

type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Reverse looks up the address at c via GET /reverse.
func (n *Nominatim) Reverse(ctx context.Context, c geo.Coordinate) (Address, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Lng, 'f', -1, 64))
	params.Set("format", "json")

	var r nominatimReverse
	if err := n.get(ctx, "/reverse", params, &r); err != nil {
		return Address{}, err
	}
	if r.Error != "" {
		return Address{}, fmt.Errorf("%w: %s", ErrNotFound, r.Error)
	}
	if r.DisplayName == "" {
		return Address{}, ErrNotFound
	}

	addr := Address{
		DisplayName: r.DisplayName,
		Road:        r.Address.Road,
		Suburb:      r.Address.Suburb,
		City:        r.Address.City,
	}
	if addr.Suburb == "" {
		addr.Suburb = r.Address.Neighbourhood
	}
	if addr.City == "" {
		addr.City = r.Address.Town
	}
	return addr, nil
}

// Search looks up places matching query via GET /search, bounded to the
// configured viewbox and to India.
func (n *Nominatim) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("countrycodes", "in")
	params.Set("limit", strconv.Itoa(searchLimit))
	if !n.viewbox.IsZero() {
		params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g",
			n.viewbox.MinLng, n.viewbox.MaxLat, n.viewbox.MaxLng, n.viewbox.MinLat))
		params.Set("bounded", "1")
	}

	var raw []nominatimPlace
	if err := n.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(raw))
	for _, p := range raw {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			continue
		}
		name := p.Name
		if name == "" {
			name = ShortLabel(p.DisplayName)
		}
		places = append(places, Place{
			Name:        name,
			DisplayName: p.DisplayName,
			Location:    geo.Coordinate{Lat: lat, Lng: lng},
		})
	}
	if len(places) == 0 {
		return nil, ErrNotFound
	}
	return places, nil
}

func (n *Nominatim) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := n.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("nominatim %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("nominatim %s: decode response: %w", path, err)
	}
	return nil
}
