package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weathercast/internal/models"
	"weathercast/pkg/observe"
)

// API Docs: https://open-meteo.com/en/docs
const (
	OpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"
)

type OpenMeteoRepository struct {
	baseURL    string
	httpClient HTTPClient
	l          *observe.Logger
}

func NewOpenMeteoRepository(baseURL string, l *observe.Logger, httpClient HTTPClient) *OpenMeteoRepository {
	if baseURL == "" {
		baseURL = OpenMeteoBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OpenMeteoRepository{
		baseURL:    baseURL,
		httpClient: httpClient,
		l:          l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return "open-meteo"
}

type OpenMeteoResponse struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Elevation            float64 `json:"elevation"`
	UTCOffsetSeconds     int     `json:"utc_offset_seconds"`
	Timezone             string  `json:"timezone"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
	Current              struct {
		Time          int64    `json:"time"`
		Temperature2m *float64 `json:"temperature_2m"`
	} `json:"current"`
	Hourly struct {
		Time          []int64    `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
	Daily struct {
		Time             []int64    `json:"time"`
		Temperature2mMax []*float64 `json:"temperature_2m_max"`
		Temperature2mMin []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

type OpenMeteoErrorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// FetchForecast requests the current temperature and one forecast window of
// hourly and daily temperature, timezone detected by the API. When the API
// answers with several results only the first is used.
func (o *OpenMeteoRepository) FetchForecast(ctx context.Context, loc models.Location, forecastWindow int) (*models.Forecast, error) {
	forecast := &models.Forecast{
		RepositoryName: o.Name(),
		Lat:            loc.Latitude,
		Lon:            loc.Longitude,
		ForecastWindow: forecastWindow,
	}

	u, err := o.requestURL(loc, forecastWindow)
	if err != nil {
		return nil, err
	}

	o.l.Info("making openmeteo API request", map[string]any{
		"params": forecast.RequestParams(),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	o.l.Info("received openmeteo API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
		"cached":     resp.Header.Get("X-From-Cache") != "",
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for HTTP error status codes
	if resp.StatusCode != http.StatusOK {
		var errorResp OpenMeteoErrorResponse
		if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Error {
			return nil, fmt.Errorf("open-meteo API error (status %d): %s", resp.StatusCode, errorResp.Reason)
		}
		return nil, fmt.Errorf("HTTP error (status %d): %s", resp.StatusCode, resp.Status)
	}

	response, err := firstResult(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	o.l.Info("parsed API response", map[string]any{
		"hours": len(response.Hourly.Time),
		"days":  len(response.Daily.Time),
	})

	forecast.Lat = response.Latitude
	forecast.Lon = response.Longitude
	forecast.Elevation = response.Elevation
	forecast.Timezone = response.Timezone
	forecast.TimezoneAbbreviation = response.TimezoneAbbreviation
	forecast.UTCOffsetSeconds = response.UTCOffsetSeconds
	forecast.Current = models.CurrentData{
		Time:        time.Unix(response.Current.Time, 0).UTC(),
		Temperature: value(response.Current.Temperature2m),
	}
	forecast.Hourly = hourlyTemperaturesOpenMeteo(response)
	forecast.ForecastData = dailyTemperaturesOpenMeteo(response)

	return forecast, nil
}

func (o *OpenMeteoRepository) requestURL(loc models.Location, forecastWindow int) (string, error) {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m")
	q.Set("hourly", "temperature_2m")
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(forecastWindow))
	q.Set("timeformat", "unixtime")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// firstResult decodes a single response object, or the first element when
// the API returns one result per location or model.
func firstResult(body []byte) (*OpenMeteoResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var responses []OpenMeteoResponse
		if err := json.Unmarshal(trimmed, &responses); err != nil {
			return nil, err
		}
		if len(responses) == 0 {
			return nil, errors.New("empty result list")
		}
		return &responses[0], nil
	}

	var response OpenMeteoResponse
	if err := json.Unmarshal(trimmed, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func hourlyTemperaturesOpenMeteo(response *OpenMeteoResponse) []models.HourlyData {
	// Find the minimum length to avoid index out of bounds
	minLength := min(len(response.Hourly.Time), len(response.Hourly.Temperature2m))

	hours := make([]models.HourlyData, 0, minLength)
	for i := 0; i < minLength; i++ {
		hours = append(hours, models.HourlyData{
			Time:        time.Unix(response.Hourly.Time[i], 0).UTC(),
			Temperature: value(response.Hourly.Temperature2m[i]),
		})
	}

	return hours
}

func dailyTemperaturesOpenMeteo(response *OpenMeteoResponse) []models.WeatherData {
	daily := response.Daily
	minLength := min(len(daily.Time), len(daily.Temperature2mMax), len(daily.Temperature2mMin))

	days := make([]models.WeatherData, 0, minLength)
	for i := 0; i < minLength; i++ {
		date := time.Unix(daily.Time[i], 0).UTC()
		days = append(days, models.WeatherData{
			Date:    &date,
			TempMax: value(daily.Temperature2mMax[i]),
			TempMin: value(daily.Temperature2mMin[i]),
		})
	}

	return days
}

// value maps a JSON null reading to NaN.
func value(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
