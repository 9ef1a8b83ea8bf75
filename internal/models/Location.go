package models

import "fmt"

// Location is the single best geocoder match for a city name.
type Location struct {
	Name      string  `json:"name,omitempty" example:"London, Greater London, England, United Kingdom"`
	Latitude  float64 `json:"latitude" example:"51.5074"`
	Longitude float64 `json:"longitude" example:"-0.1278"`
}

func (l Location) String() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}
