package weather_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathercast/internal/models"
	"weathercast/internal/repositories"
	"weathercast/internal/services/weather"
	"weathercast/pkg/observe"
)

// MockGeocoder implements repositories.Geocoder for testing
type MockGeocoder struct {
	locations map[string]models.Location
	err       error
	calls     []string
}

func (m *MockGeocoder) Name() string {
	return "mock-geocoder"
}

func (m *MockGeocoder) Geocode(ctx context.Context, city string) (models.Location, error) {
	m.calls = append(m.calls, city)

	if m.err != nil {
		return models.Location{}, m.err
	}
	loc, ok := m.locations[city]
	if !ok {
		return models.Location{}, fmt.Errorf("coordinates for %s not found: %w", city, repositories.ErrLocationNotFound)
	}
	return loc, nil
}

// MockRepository implements repositories.ForecastRepository for testing
type MockRepository struct {
	forecast *models.Forecast
	err      error
	gotLoc   models.Location
	gotDays  int
	calls    int
}

func (m *MockRepository) Name() string {
	return "mock-repo"
}

func (m *MockRepository) FetchForecast(ctx context.Context, loc models.Location, forecastWindow int) (*models.Forecast, error) {
	m.calls++
	m.gotLoc = loc
	m.gotDays = forecastWindow

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.forecast, nil
}

func testLogger() *observe.Logger {
	return observe.NewZapLogger("test-app", io.Discard)
}

func TestWeatherService_Forecast_Success(t *testing.T) {
	london := models.Location{Name: "London", Latitude: 51.5074, Longitude: -0.1278}
	geocoder := &MockGeocoder{locations: map[string]models.Location{"London": london}}
	repo := &MockRepository{forecast: &models.Forecast{Timezone: "Europe/London"}}

	service := weather.NewWeatherService(geocoder, repo, 0, testLogger())

	forecast, err := service.Forecast(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, "Europe/London", forecast.Timezone)
	assert.Equal(t, []string{"London"}, geocoder.calls)
	assert.Equal(t, london, repo.gotLoc)
	assert.Equal(t, 1, repo.gotDays)
}

func TestWeatherService_Forecast_NotFoundSkipsFetch(t *testing.T) {
	geocoder := &MockGeocoder{}
	repo := &MockRepository{}

	service := weather.NewWeatherService(geocoder, repo, 1, testLogger())

	_, err := service.Forecast(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrLocationNotFound)
	assert.Equal(t, "coordinates for Atlantis not found: location not found", err.Error())
	assert.Zero(t, repo.calls)
}

func TestWeatherService_Forecast_GeocoderFailurePropagates(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	geocoder := &MockGeocoder{err: cause}
	repo := &MockRepository{}

	service := weather.NewWeatherService(geocoder, repo, 1, testLogger())

	_, err := service.Forecast(context.Background(), "London")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `geocode "London"`)
	assert.Zero(t, repo.calls)
}

func TestWeatherService_Forecast_FetchFailurePropagates(t *testing.T) {
	geocoder := &MockGeocoder{locations: map[string]models.Location{"Paris": {Latitude: 48.85, Longitude: 2.35}}}
	cause := errors.New("HTTP error (status 502): 502 Bad Gateway")
	repo := &MockRepository{err: cause}

	service := weather.NewWeatherService(geocoder, repo, 3, testLogger())

	_, err := service.Forecast(context.Background(), "Paris")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, repo.gotDays)
}

func TestWeatherService_Forecast_ContextCancelled(t *testing.T) {
	geocoder := &MockGeocoder{locations: map[string]models.Location{"Rome": {Latitude: 41.9, Longitude: 12.5}}}
	repo := &MockRepository{forecast: &models.Forecast{}}

	service := weather.NewWeatherService(geocoder, repo, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Forecast(ctx, "Rome")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWeatherService_Resolve(t *testing.T) {
	geocoder := &MockGeocoder{locations: map[string]models.Location{"Oslo": {Latitude: 59.91, Longitude: 10.75}}}
	service := weather.NewWeatherService(geocoder, &MockRepository{}, 1, testLogger())

	loc, err := service.Resolve(context.Background(), "Oslo")
	require.NoError(t, err)
	assert.Equal(t, 59.91, loc.Latitude)
	assert.Equal(t, 10.75, loc.Longitude)
}
