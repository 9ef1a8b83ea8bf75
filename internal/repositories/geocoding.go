package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"weathercast/internal/models"
	"weathercast/pkg/observe"
)

// API Docs: https://open-meteo.com/en/docs/geocoding-api
const (
	OpenMeteoGeocodingBaseURL = "https://geocoding-api.open-meteo.com"
)

type OpenMeteoGeocoder struct {
	baseURL    string
	httpClient HTTPClient
	l          *observe.Logger
}

type OpenMeteoGeocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

func NewOpenMeteoGeocoder(baseURL string, l *observe.Logger, httpClient HTTPClient) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = OpenMeteoGeocodingBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OpenMeteoGeocoder{
		baseURL:    baseURL,
		httpClient: httpClient,
		l:          l,
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return "open-meteo"
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, city string) (models.Location, error) {
	u, err := url.Parse(g.baseURL + "/v1/search")
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	g.l.Debug("making open-meteo geocoding request", map[string]any{"city": city})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var errorResp OpenMeteoErrorResponse
		body, _ := io.ReadAll(resp.Body)
		if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Error {
			return models.Location{}, fmt.Errorf("geocoder error (status %d): %s", resp.StatusCode, errorResp.Reason)
		}
		return models.Location{}, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp OpenMeteoGeocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return models.Location{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Results) == 0 {
		return models.Location{}, notFound(city)
	}

	r := apiResp.Results[0]
	name := strings.Join(nonEmpty(r.Name, r.Admin1, r.Country), ", ")

	return models.Location{
		Name:      name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
