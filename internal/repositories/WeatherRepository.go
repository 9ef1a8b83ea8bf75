package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"weathercast/config"
	"weathercast/internal/models"
	"weathercast/pkg/observe"
)

// ErrLocationNotFound is wrapped by every Geocoder when the lookup has no match.
var ErrLocationNotFound = errors.New("location not found")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Geocoder resolves a free-text place name to its best single match.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, city string) (models.Location, error)
}

type ForecastRepository interface {
	Name() string
	FetchForecast(ctx context.Context, loc models.Location, forecastWindow int) (*models.Forecast, error)
}

func notFound(city string) error {
	return fmt.Errorf("coordinates for %s not found: %w", city, ErrLocationNotFound)
}

// InitGeocoder builds the configured geocoder with its own plain HTTP client;
// geocoding is neither cached nor retried.
func InitGeocoder(cfg *config.Config, l *observe.Logger) (Geocoder, error) {
	httpClient := &http.Client{Timeout: cfg.Geocoder.Timeout}

	switch cfg.Geocoder.Provider {
	case "nominatim":
		return NewNominatimGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, l, httpClient), nil
	case "open-meteo":
		return NewOpenMeteoGeocoder(cfg.Geocoder.BaseURL, l, httpClient), nil
		// Add more cases for new providers to extend the app
	}

	return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Geocoder.Provider)
}

// InitForecastRepository wires the forecast API to the process-wide client.
func InitForecastRepository(cfg *config.Config, httpClient HTTPClient, l *observe.Logger) ForecastRepository {
	return NewOpenMeteoRepository(cfg.Forecast.BaseURL, l, httpClient)
}
