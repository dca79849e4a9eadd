package domain

import (
	"context"
	"time"
)

// Units selects the measurement system for a forecast. Changing units forces
// a full resync because the dataset identity changes.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether u is a known measurement system.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// CurrentConditions holds the observation attached to a forecast payload.
type CurrentConditions struct {
	Temperature         float64   `json:"temperature"`
	ApparentTemperature float64   `json:"apparent_temperature"`
	Humidity            int       `json:"humidity"`
	WindSpeed           float64   `json:"wind_speed"`
	Precipitation       float64   `json:"precipitation"`
	WeatherCode         int       `json:"weather_code"`
	Label               string    `json:"label"`
	ObservedAt          time.Time `json:"observed_at"`
}

// DailyForecast is one day of the forecast list. Day is the chronological
// key ("2006-01-02" in the location's timezone) used throughout dayOrder,
// SelectedDay, and the hourly map.
type DailyForecast struct {
	Day                      string  `json:"day"`
	WeatherCode              int     `json:"weather_code"`
	Label                    string  `json:"label"`
	TemperatureMax           float64 `json:"temperature_max"`
	TemperatureMin           float64 `json:"temperature_min"`
	PrecipitationSum         float64 `json:"precipitation_sum"`
	PrecipitationProbability int     `json:"precipitation_probability"`
	WindSpeedMax             float64 `json:"wind_speed_max"`
}

// HourlyForecast is one hour within a day's detail view.
type HourlyForecast struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperature"`
	WeatherCode              int       `json:"weather_code"`
	PrecipitationProbability int       `json:"precipitation_probability"`
}

// WeatherData is a complete forecast payload. It is transient and replaced
// wholesale per fetch; nothing ever mutates it partially.
type WeatherData struct {
	Location    LocationMatch               `json:"location"`
	Current     CurrentConditions           `json:"current"`
	Daily       []DailyForecast             `json:"daily"`
	HourlyByDay map[string][]HourlyForecast `json:"hourly_by_day"`
	DayOrder    []string                    `json:"day_order"`
	Units       Units                       `json:"units"`
	FetchedAt   time.Time                   `json:"fetched_at"`
}

// HasDay reports whether day is present in DayOrder.
func (w *WeatherData) HasDay(day string) bool {
	for _, d := range w.DayOrder {
		if d == day {
			return true
		}
	}
	return false
}

// Geocoder resolves free-text place names to location matches.
type Geocoder interface {
	// Search returns an ordered list of matches for the query. An empty
	// list with a nil error means the query resolved to no known place.
	Search(ctx context.Context, query string) ([]LocationMatch, error)
}

// Forecaster fetches a forecast payload for a (location, units) pair.
type Forecaster interface {
	Forecast(ctx context.Context, loc LocationMatch, units Units) (WeatherData, error)
}
