package models

import "time"

// WeatherData is one row of the daily series.
type WeatherData struct {
	Date    *time.Time `json:"date" example:"2025-07-25T00:00:00Z"`
	TempMax float64    `json:"temp_max" example:"38.0"`
	TempMin float64    `json:"temp_min" example:"24.3"`
}

// HourlyData is one row of the hourly series.
type HourlyData struct {
	Time        time.Time `json:"time" example:"2025-07-25T13:00:00Z"`
	Temperature float64   `json:"temperature" example:"21.4"`
}

type CurrentData struct {
	Time        time.Time `json:"time" example:"2025-07-25T13:15:00Z"`
	Temperature float64   `json:"temperature" example:"21.7"`
}
