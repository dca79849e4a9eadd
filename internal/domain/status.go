package domain

// SearchStatus is the state of the search controller.
type SearchStatus string

const (
	SearchIdle      SearchStatus = "idle"
	SearchLoading   SearchStatus = "loading"
	SearchError     SearchStatus = "error"
	SearchNoResults SearchStatus = "no-results"
)

// ForecastStatus is the state of the forecast controller. Auto-refresh never
// touches it before a request; only initial fetches pass through loading.
type ForecastStatus string

const (
	ForecastIdle    ForecastStatus = "idle"
	ForecastLoading ForecastStatus = "loading"
	ForecastReady   ForecastStatus = "ready"
	ForecastError   ForecastStatus = "error"
)
