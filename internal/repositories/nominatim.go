package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"weathercast/internal/models"
	"weathercast/pkg/observe"
)

// API Docs: https://nominatim.org/release-docs/develop/api/Search/
// Sample request: https://nominatim.openstreetmap.org/search?q=London&format=jsonv2&limit=1
const (
	NominatimBaseURL = "https://nominatim.openstreetmap.org"
)

type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient HTTPClient
	l          *observe.Logger
}

// NominatimPlace is one search hit. Nominatim encodes coordinates as strings.
type NominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// NewNominatimGeocoder requires a userAgent identifying the application, per
// the Nominatim usage policy.
func NewNominatimGeocoder(baseURL, userAgent string, l *observe.Logger, httpClient HTTPClient) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &NominatimGeocoder{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		l:          l,
	}
}

func (n *NominatimGeocoder) Name() string {
	return "nominatim"
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, city string) (models.Location, error) {
	u, err := url.Parse(n.baseURL + "/search")
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("q", city)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	n.l.Debug("making nominatim search request", map[string]any{"city": city})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.Location{}, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
	}

	var places []NominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return models.Location{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(places) == 0 {
		return models.Location{}, notFound(city)
	}

	return places[0].location()
}

func (p NominatimPlace) location() (models.Location, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid latitude %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid longitude %q: %w", p.Lon, err)
	}

	name := p.DisplayName
	if name == "" {
		name = p.Name
	}

	return models.Location{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
