package openmeteo

import (
	"fmt"
	"time"

	"github.com/skycast-app/skycast/internal/domain"
)

// buildWeatherData assembles the forecast response into a single payload:
// the daily list becomes dayOrder (already chronological in the API), and
// hourly entries are grouped under their local calendar date.
func buildWeatherData(loc domain.LocationMatch, units domain.Units, resp forecastResponse, fetchedAt time.Time) (domain.WeatherData, error) {
	d := resp.Daily
	if len(d.Time) == 0 {
		return domain.WeatherData{}, fmt.Errorf("forecast response has no daily data")
	}
	if len(d.WeatherCode) != len(d.Time) || len(d.TemperatureMax) != len(d.Time) || len(d.TemperatureMin) != len(d.Time) {
		return domain.WeatherData{}, fmt.Errorf("forecast response daily arrays are misaligned")
	}

	daily := make([]domain.DailyForecast, 0, len(d.Time))
	dayOrder := make([]string, 0, len(d.Time))
	for i, day := range d.Time {
		df := domain.DailyForecast{
			Day:            day,
			WeatherCode:    d.WeatherCode[i],
			Label:          CodeLabel(d.WeatherCode[i]),
			TemperatureMax: d.TemperatureMax[i],
			TemperatureMin: d.TemperatureMin[i],
		}
		if i < len(d.PrecipitationSum) {
			df.PrecipitationSum = d.PrecipitationSum[i]
		}
		if i < len(d.PrecipitationProbability) {
			df.PrecipitationProbability = d.PrecipitationProbability[i]
		}
		if i < len(d.WindSpeedMax) {
			df.WindSpeedMax = d.WindSpeedMax[i]
		}
		daily = append(daily, df)
		dayOrder = append(dayOrder, day)
	}

	hourlyByDay := make(map[string][]domain.HourlyForecast, len(dayOrder))
	for i, ts := range resp.Hourly.Time {
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			return domain.WeatherData{}, fmt.Errorf("parse hourly time %q: %w", ts, err)
		}
		if i >= len(resp.Hourly.Temperature) || i >= len(resp.Hourly.WeatherCode) {
			break
		}
		h := domain.HourlyForecast{
			Time:        t,
			Temperature: resp.Hourly.Temperature[i],
			WeatherCode: resp.Hourly.WeatherCode[i],
		}
		if i < len(resp.Hourly.PrecipitationProbability) {
			h.PrecipitationProbability = resp.Hourly.PrecipitationProbability[i]
		}
		day := ts[:10]
		hourlyByDay[day] = append(hourlyByDay[day], h)
	}

	observedAt, err := time.Parse(timeLayout, resp.Current.Time)
	if err != nil {
		return domain.WeatherData{}, fmt.Errorf("parse current time %q: %w", resp.Current.Time, err)
	}

	return domain.WeatherData{
		Location: loc,
		Current: domain.CurrentConditions{
			Temperature:         resp.Current.Temperature,
			ApparentTemperature: resp.Current.ApparentTemperature,
			Humidity:            resp.Current.Humidity,
			WindSpeed:           resp.Current.WindSpeed,
			Precipitation:       resp.Current.Precipitation,
			WeatherCode:         resp.Current.WeatherCode,
			Label:               CodeLabel(resp.Current.WeatherCode),
			ObservedAt:          observedAt,
		},
		Daily:       daily,
		HourlyByDay: hourlyByDay,
		DayOrder:    dayOrder,
		Units:       units,
		FetchedAt:   fetchedAt,
	}, nil
}
