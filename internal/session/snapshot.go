package session

import "github.com/skycast-app/skycast/internal/domain"

// Snapshot is a consistent copy of the session state, taken under the lock.
// Weather points at an immutable payload (replaced wholesale, never
// mutated), so sharing it is safe.
type Snapshot struct {
	Query        string                 `json:"query"`
	Results      []domain.LocationMatch `json:"results"`
	SearchStatus domain.SearchStatus    `json:"search_status"`
	SearchError  string                 `json:"search_error,omitempty"`

	Location       domain.LocationMatch  `json:"location"`
	Units          domain.Units          `json:"units"`
	ForecastStatus domain.ForecastStatus `json:"forecast_status"`
	ForecastError  string                `json:"forecast_error,omitempty"`
	Weather        *domain.WeatherData   `json:"weather,omitempty"`
	SelectedDay    string                `json:"selected_day,omitempty"`
}

// Snapshot returns the current session state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.LocationMatch, len(s.results))
	copy(results, s.results)

	return Snapshot{
		Query:        s.query,
		Results:      results,
		SearchStatus: s.searchStatus,
		SearchError:  s.searchErr,

		Location:       s.location,
		Units:          s.units,
		ForecastStatus: s.forecastStatus,
		ForecastError:  s.forecastErr,
		Weather:        s.weather,
		SelectedDay:    s.selectedDay,
	}
}
