package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/skycast-app/skycast/internal/domain"
	"github.com/skycast-app/skycast/internal/observability"
)

// timeLayout is the local-time format Open-Meteo uses when a timezone
// parameter is supplied.
const timeLayout = "2006-01-02T15:04"

// Client implements domain.Geocoder and domain.Forecaster against the
// Open-Meteo geocoding and forecast APIs. Both endpoints share one circuit
// breaker so a dead upstream trips fast for either call.
type Client struct {
	httpClient      *http.Client
	geocodeURL      string
	forecastURL     string
	geocodeTimeout  time.Duration
	forecastTimeout time.Duration
	limit           int
	breaker         *gobreaker.CircuitBreaker
	clock           clockwork.Clock
	logger          *slog.Logger
	metrics         *observability.Metrics
}

// NewClient creates an Open-Meteo client. limit caps the number of geocode
// matches requested per search.
func NewClient(geocodeTimeout, forecastTimeout time.Duration, limit int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})

	return &Client{
		httpClient:      &http.Client{},
		geocodeURL:      "https://geocoding-api.open-meteo.com/v1/search",
		forecastURL:     "https://api.open-meteo.com/v1/forecast",
		geocodeTimeout:  geocodeTimeout,
		forecastTimeout: forecastTimeout,
		limit:           limit,
		breaker:         cb,
		clock:           clock,
		logger:          logger,
		metrics:         metrics,
	}
}

// Search resolves a free-text place name to an ordered list of matches.
// An empty list with a nil error means no known place matched.
func (c *Client) Search(ctx context.Context, query string) ([]domain.LocationMatch, error) {
	params := url.Values{
		"name":     {query},
		"count":    {strconv.Itoa(c.limit)},
		"language": {"en"},
		"format":   {"json"},
	}

	var resp geocodeResponse
	if err := c.doRequest(ctx, c.geocodeTimeout, c.geocodeURL+"?"+params.Encode(), &resp); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	if len(resp.Results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()

	matches := make([]domain.LocationMatch, 0, len(resp.Results))
	for _, r := range resp.Results {
		matches = append(matches, domain.LocationMatch{
			ID:        r.ID,
			Name:      r.Name,
			Admin1:    r.Admin1,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Timezone:  r.Timezone,
		})
	}
	return matches, nil
}

// Forecast fetches current conditions plus the daily and hourly forecast
// for a location in the requested units, assembled into one payload.
func (c *Client) Forecast(ctx context.Context, loc domain.LocationMatch, units domain.Units) (domain.WeatherData, error) {
	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", loc.Latitude)},
		"longitude": {fmt.Sprintf("%.4f", loc.Longitude)},
		"timezone":  {loc.Timezone},
		"current":   {"temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m"},
		"daily":     {"weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,wind_speed_10m_max"},
		"hourly":    {"temperature_2m,weather_code,precipitation_probability"},
	}
	if loc.Timezone == "" {
		params.Set("timezone", "auto")
	}
	if units == domain.UnitsImperial {
		params.Set("temperature_unit", "fahrenheit")
		params.Set("wind_speed_unit", "mph")
		params.Set("precipitation_unit", "inch")
	}

	var resp forecastResponse
	if err := c.doRequest(ctx, c.forecastTimeout, c.forecastURL+"?"+params.Encode(), &resp); err != nil {
		return domain.WeatherData{}, err
	}

	return buildWeatherData(loc, units, resp, c.clock.Now().UTC())
}

func (c *Client) doRequest(ctx context.Context, timeout time.Duration, fullURL string, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("open-meteo request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, msg)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Open-Meteo API response types.

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

type forecastResponse struct {
	Current struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		Humidity            int     `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed           float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Time                     []string  `json:"time"`
		WeatherCode              []int     `json:"weather_code"`
		TemperatureMax           []float64 `json:"temperature_2m_max"`
		TemperatureMin           []float64 `json:"temperature_2m_min"`
		PrecipitationSum         []float64 `json:"precipitation_sum"`
		PrecipitationProbability []int     `json:"precipitation_probability_max"`
		WindSpeedMax             []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		WeatherCode              []int     `json:"weather_code"`
		PrecipitationProbability []int     `json:"precipitation_probability"`
	} `json:"hourly"`
}
