package models

import "fmt"

// Forecast is everything one render needs: location metadata, the current
// reading, and the hourly and daily temperature series.
type Forecast struct {
	RepositoryName       string        `json:"repository_name" example:"open-meteo"`
	Lat                  float64       `json:"lat" example:"51.5"`
	Lon                  float64       `json:"lon" example:"-0.12"`
	Elevation            float64       `json:"elevation" example:"23"`
	Timezone             string        `json:"timezone" example:"Europe/London"`
	TimezoneAbbreviation string        `json:"timezone_abbreviation" example:"BST"`
	UTCOffsetSeconds     int           `json:"utc_offset_seconds" example:"3600"`
	ForecastWindow       int           `json:"forecast_window" example:"1"`
	Current              CurrentData   `json:"current"`
	Hourly               []HourlyData  `json:"hourly"`
	ForecastData         []WeatherData `json:"daily"`
}

func (f *Forecast) RequestParams() string {
	return fmt.Sprintf("lat: %.4f lon: %.4f days: %d", f.Lat, f.Lon, f.ForecastWindow)
}
