package weather

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"weathercast/internal/models"
	"weathercast/internal/repositories"
	"weathercast/pkg/observe"
)

const defaultForecastWindow = 1

// WeatherService resolves a city and fetches its forecast. It holds no state
// between calls.
type WeatherService struct {
	geocoder       repositories.Geocoder
	repo           repositories.ForecastRepository
	forecastWindow int
	l              *observe.Logger
}

func NewWeatherService(geocoder repositories.Geocoder, repo repositories.ForecastRepository, forecastWindow int, l *observe.Logger) *WeatherService {
	if forecastWindow <= 0 {
		forecastWindow = defaultForecastWindow
	}

	return &WeatherService{
		geocoder:       geocoder,
		repo:           repo,
		forecastWindow: forecastWindow,
		l:              l,
	}
}

// Resolve returns the best match for city or an error wrapping
// repositories.ErrLocationNotFound.
func (s *WeatherService) Resolve(ctx context.Context, city string) (models.Location, error) {
	loc, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			s.l.Warning("location not found", map[string]any{"city": city, "geocoder": s.geocoder.Name()})
			return models.Location{}, err
		}
		return models.Location{}, errors.Wrapf(err, "geocode %q", city)
	}

	s.l.Info("resolved location", map[string]any{
		"city":     city,
		"geocoder": s.geocoder.Name(),
		"name":     loc.Name,
		"lat":      loc.Latitude,
		"lon":      loc.Longitude,
	})

	return loc, nil
}

func (s *WeatherService) FetchForecast(ctx context.Context, loc models.Location) (*models.Forecast, error) {
	s.l.Debug("fetching forecast", map[string]any{"repo": s.repo.Name(), "lat": loc.Latitude, "lon": loc.Longitude})

	forecast, err := s.repo.FetchForecast(ctx, loc, s.forecastWindow)
	if err != nil {
		return nil, errors.Wrap(err, "fetch forecast")
	}

	s.l.Info("successfully fetched forecast", map[string]any{
		"repo":  s.repo.Name(),
		"hours": len(forecast.Hourly),
		"days":  len(forecast.ForecastData),
	})

	return forecast, nil
}

// Forecast runs geocoding then the forecast request for city.
func (s *WeatherService) Forecast(ctx context.Context, city string) (*models.Forecast, error) {
	start := time.Now()

	loc, err := s.Resolve(ctx, city)
	if err != nil {
		return nil, err
	}

	forecast, err := s.FetchForecast(ctx, loc)
	if err != nil {
		return nil, err
	}

	s.l.Info("completed forecast pipeline", map[string]any{
		"city":     city,
		"duration": time.Since(start).String(),
	})

	return forecast, nil
}
