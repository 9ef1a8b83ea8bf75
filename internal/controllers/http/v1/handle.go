package http

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"weathercast/internal/models"
	"weathercast/internal/repositories"
)

// ForecastResponse represents the forecast for a single city
type ForecastResponse struct {
	City                 string         `json:"city" example:"London"`
	Latitude             float64        `json:"latitude" example:"51.5"`
	Longitude            float64        `json:"longitude" example:"-0.12"`
	Elevation            float64        `json:"elevation" example:"23"`
	Timezone             string         `json:"timezone" example:"Europe/London"`
	TimezoneAbbreviation string         `json:"timezone_abbreviation" example:"BST"`
	UTCOffsetSeconds     int            `json:"utc_offset_seconds" example:"3600"`
	Current              Reading        `json:"current"`
	Hourly               []Reading      `json:"hourly"`
	Daily                []DailyReading `json:"daily"`
}

// Reading is one timestamped temperature; null when the API had no value
type Reading struct {
	Time        time.Time `json:"time" example:"2025-07-25T13:00:00Z"`
	Temperature *float64  `json:"temperature" example:"21.4"`
}

// DailyReading represents a single day's temperature range
type DailyReading struct {
	Date    string   `json:"date" example:"2025-07-25"`
	TempMax *float64 `json:"temp_max" example:"24.3"`
	TempMin *float64 `json:"temp_min" example:"13.8"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: city"`
}

// GetForecast godoc
// @Summary Get forecast for a city
// @Description Geocodes the city and returns its current, hourly and daily temperatures from Open-Meteo
// @Tags Forecast
// @Accept json
// @Produce json
// @Param city query string true "City name" example(London)
// @Success 200 {object} ForecastResponse "Successful response"
// @Failure 400 {object} ErrorResponse "Bad request - missing city"
// @Failure 404 {object} ErrorResponse "City could not be geocoded"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/forecast [get]
// @Example {curl} Example usage:
//
//	curl -X GET "http://localhost:8080/api/forecast?city=London"
func (r *routes) handleForecastCall(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: city",
		})
	}

	forecast, err := r.pipeline.Forecast(c.Context(), city)
	if err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		}

		r.l.Error(err, map[string]any{"city": city})

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to fetch weather data",
		})
	}

	return c.JSON(toResponse(city, forecast))
}

func toResponse(city string, f *models.Forecast) ForecastResponse {
	resp := ForecastResponse{
		City:                 city,
		Latitude:             f.Lat,
		Longitude:            f.Lon,
		Elevation:            f.Elevation,
		Timezone:             f.Timezone,
		TimezoneAbbreviation: f.TimezoneAbbreviation,
		UTCOffsetSeconds:     f.UTCOffsetSeconds,
		Current:              Reading{Time: f.Current.Time.UTC(), Temperature: nullable(f.Current.Temperature)},
		Hourly:               make([]Reading, 0, len(f.Hourly)),
		Daily:                make([]DailyReading, 0, len(f.ForecastData)),
	}

	for _, h := range f.Hourly {
		resp.Hourly = append(resp.Hourly, Reading{Time: h.Time.UTC(), Temperature: nullable(h.Temperature)})
	}

	for _, d := range f.ForecastData {
		day := DailyReading{TempMax: nullable(d.TempMax), TempMin: nullable(d.TempMin)}
		if d.Date != nil {
			day.Date = d.Date.UTC().Format(time.DateOnly)
		}
		resp.Daily = append(resp.Daily, day)
	}

	return resp
}

// nullable maps NaN, which JSON cannot carry, to null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
