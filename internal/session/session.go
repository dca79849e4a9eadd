package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skycast-app/skycast/internal/domain"
	"github.com/skycast-app/skycast/internal/observability"
	"github.com/skycast-app/skycast/internal/store"
)

// ErrNoSuchResult is returned when a selection index does not point into the
// current result list.
var ErrNoSuchResult = errors.New("no such search result")

// DefaultUnits is the measurement system a fresh session starts in. Units
// are deliberately not persisted; a reload resets them.
const DefaultUnits = domain.UnitsMetric

// Fetch modes, used as metric labels and to pick status semantics.
const (
	modeInitial = "initial"
	modeRefresh = "refresh"
)

// Session is the state-synchronization core of the dashboard. It coordinates
// the geocoding search, the forecast fetch cycle with its silent
// auto-refresh, and the selected forecast day, keeping every derived value
// consistent under overlapping asynchronous completions.
//
// One mutex guards all state. Every asynchronous completion captures the
// generation token of the cycle that issued it and re-validates the token
// under the lock before mutating anything; a result from a superseded cycle
// is discarded unconditionally.
type Session struct {
	geocoder        domain.Geocoder
	forecaster      domain.Forecaster
	locations       *store.LocationStore
	clock           clockwork.Clock
	refreshInterval time.Duration
	logger          *slog.Logger
	metrics         *observability.Metrics

	baseCtx context.Context
	ready   atomic.Bool
	wg      sync.WaitGroup

	mu sync.Mutex

	// Search state.
	query        string
	results      []domain.LocationMatch
	searchStatus domain.SearchStatus
	searchErr    string

	// Forecast state. weather is replaced wholesale and never mutated in
	// place, so handing the pointer out in snapshots is safe.
	location       domain.LocationMatch
	units          domain.Units
	forecastStatus domain.ForecastStatus
	forecastErr    string
	weather        *domain.WeatherData
	selectedDay    string

	// Cycle ownership: generation identifies the active (location, units)
	// cycle, cancelCycle tears down its goroutine. epoch identifies the
	// session incarnation; a reload or close bumps it so completions from
	// before the reset can never land on the fresh state.
	generation  uint64
	epoch       uint64
	cancelCycle context.CancelFunc
}

// New creates a Session. Call Start before use.
func New(
	geocoder domain.Geocoder,
	forecaster domain.Forecaster,
	locations *store.LocationStore,
	clock clockwork.Clock,
	refreshInterval time.Duration,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Session {
	return &Session{
		geocoder:        geocoder,
		forecaster:      forecaster,
		locations:       locations,
		clock:           clock,
		refreshInterval: refreshInterval,
		logger:          logger,
		metrics:         metrics,
		searchStatus:    domain.SearchIdle,
		forecastStatus:  domain.ForecastIdle,
		units:           DefaultUnits,
	}
}

// Start initializes the session from persisted state and begins the first
// forecast cycle. ctx bounds the lifetime of all background work.
func (s *Session) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.initialize(ctx)
	s.ready.Store(true)
	s.metrics.SessionReady.Set(1)
	s.logger.Info("session started", "refresh_interval", s.refreshInterval)
}

// Reload performs the scheduled hard reset: all transient state (edited
// query text, result list, in-flight cycles) is discarded and the session
// reinitializes from persisted state, exactly as a fresh start would.
func (s *Session) Reload(ctx context.Context) {
	s.metrics.SessionReloads.Inc()
	s.logger.Info("session reload")
	s.initialize(ctx)
}

func (s *Session) initialize(ctx context.Context) {
	loc := s.locations.Load(ctx)
	query := s.locations.LoadQuery(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++

	s.query = query
	s.results = nil
	s.searchStatus = domain.SearchIdle
	s.searchErr = ""

	s.location = loc
	s.units = DefaultUnits
	s.weather = nil
	s.selectedDay = ""

	s.restartCycleLocked()
}

// Close tears down the active cycle and waits for background goroutines.
func (s *Session) Close() {
	s.mu.Lock()
	s.generation++ // invalidate anything still in flight
	s.epoch++
	if s.cancelCycle != nil {
		s.cancelCycle()
		s.cancelCycle = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.ready.Store(false)
	s.metrics.SessionReady.Set(0)
}

// CheckReadiness reports whether the session has initialized from
// persistence.
func (s *Session) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("session has not initialized yet")
	}
	return nil
}

// SetQuery records in-progress edited text. It is transient: never
// persisted, and lost on reload.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

// Submit runs one search. A trimmed-empty query short-circuits to
// no-results without any network call and clears the forecast entirely; a
// non-empty query geocodes and publishes the result list. Selection is
// never automatic, even for a single match.
func (s *Session) Submit(ctx context.Context, query string) {
	trimmed := strings.TrimSpace(query)

	s.mu.Lock()
	s.query = query
	s.results = nil
	s.searchErr = ""
	if trimmed == "" {
		s.searchStatus = domain.SearchNoResults
		s.clearForecastLocked()
		s.mu.Unlock()
		return
	}
	s.searchStatus = domain.SearchLoading
	epoch := s.epoch
	s.mu.Unlock()

	matches, err := s.geocoder.Search(ctx, trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The session was reset while the geocode was in flight; the
	// completion belongs to the previous incarnation.
	if epoch != s.epoch {
		s.metrics.StaleResultsDropped.Inc()
		return
	}

	if err != nil {
		s.logger.Warn("geocode failed", "query", trimmed, "error", err)
		s.searchStatus = domain.SearchError
		s.searchErr = messageOrFallback(err)
		s.clearForecastLocked()
		return
	}
	if len(matches) == 0 {
		s.searchStatus = domain.SearchNoResults
		s.clearForecastLocked()
		return
	}
	s.searchStatus = domain.SearchIdle
	s.results = matches
}

// SelectResult makes loc the selected location: persists it with its
// canonical search term, clears the result list, and restarts the forecast
// cycle. This is the only path that writes to durable storage.
func (s *Session) SelectResult(ctx context.Context, loc domain.LocationMatch) {
	selected := s.locations.Select(ctx, loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = nil
	s.searchStatus = domain.SearchIdle
	s.searchErr = ""
	s.query = selected.Canonical()

	s.location = selected
	s.restartCycleLocked()
}

// SelectIndex selects the i-th entry of the current result list.
func (s *Session) SelectIndex(ctx context.Context, i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.results) {
		s.mu.Unlock()
		return ErrNoSuchResult
	}
	loc := s.results[i]
	s.mu.Unlock()

	s.SelectResult(ctx, loc)
	return nil
}

// SetUnits switches the measurement system. A change always forces a hard
// resync through the loading state; the dataset identity has changed, so a
// sticky merge would be wrong.
func (s *Session) SetUnits(units domain.Units) error {
	if !units.Valid() {
		return errors.New("unknown units")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if units == s.units {
		return nil
	}
	s.units = units
	s.restartCycleLocked()
	return nil
}

// SelectDay sets the viewed forecast day unconditionally. Validity against
// dayOrder is an external invariant: days are only ever offered from the
// live payload, and the reset/sticky logic repairs the selection whenever
// the payload changes.
func (s *Session) SelectDay(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDay = day
}

// clearForecastLocked drops the forecast entirely: the cycle is torn down,
// the payload discarded, and the status reset to idle so stale data is
// hidden. Callers hold s.mu.
func (s *Session) clearForecastLocked() {
	s.generation++
	if s.cancelCycle != nil {
		s.cancelCycle()
		s.cancelCycle = nil
	}
	s.forecastStatus = domain.ForecastIdle
	s.forecastErr = ""
	s.weather = nil
	s.selectedDay = ""
}

// restartCycleLocked tears down the active cycle and starts a new one for
// the current (location, units) pair. The loading status is set before the
// request is issued so a forced resync never skips it. Callers hold s.mu.
func (s *Session) restartCycleLocked() {
	s.generation++
	gen := s.generation
	if s.cancelCycle != nil {
		s.cancelCycle()
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancelCycle = cancel

	s.forecastStatus = domain.ForecastLoading
	s.forecastErr = ""

	loc, units := s.location, s.units
	s.wg.Add(1)
	go s.runCycle(ctx, gen, loc, units)
}

// runCycle performs the initial fetch, then ticks the silent auto-refresh
// until the cycle is torn down. Fetches within one cycle are strictly
// sequential, so results cannot apply out of order inside a cycle; across
// cycles the generation token decides.
func (s *Session) runCycle(ctx context.Context, gen uint64, loc domain.LocationMatch, units domain.Units) {
	defer s.wg.Done()

	s.fetch(ctx, gen, loc, units, modeInitial)

	ticker := s.clock.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.fetch(ctx, gen, loc, units, modeRefresh)
		}
	}
}

// fetch performs one forecast request and applies the outcome if the owning
// cycle is still active. Initial outcomes are user-visible; refresh
// failures are swallowed entirely so a working view is never disrupted.
func (s *Session) fetch(ctx context.Context, gen uint64, loc domain.LocationMatch, units domain.Units, mode string) {
	start := s.clock.Now()
	data, err := s.forecaster.Forecast(ctx, loc, units)
	s.metrics.ForecastFetchDuration.WithLabelValues(mode).Observe(s.clock.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.metrics.StaleResultsDropped.Inc()
		return
	}

	if err != nil {
		s.metrics.ForecastFetches.WithLabelValues(mode, "error").Inc()
		if mode == modeInitial {
			s.logger.Warn("initial forecast fetch failed", "location", loc.Name, "error", err)
			s.forecastStatus = domain.ForecastError
			s.forecastErr = messageOrFallback(err)
		} else {
			s.logger.Debug("auto-refresh fetch failed, keeping last good view", "location", loc.Name, "error", err)
		}
		return
	}
	// A payload without days cannot be shown: ready always implies a valid
	// selected day. Treated like a failed fetch.
	if len(data.DayOrder) == 0 {
		s.metrics.ForecastFetches.WithLabelValues(mode, "error").Inc()
		if mode == modeInitial {
			s.logger.Warn("initial forecast payload has no days", "location", loc.Name)
			s.forecastStatus = domain.ForecastError
			s.forecastErr = "forecast has no days"
		} else {
			s.logger.Debug("auto-refresh payload has no days, keeping last good view", "location", loc.Name)
		}
		return
	}
	s.metrics.ForecastFetches.WithLabelValues(mode, "success").Inc()

	prev := s.selectedDay
	s.weather = &data
	s.forecastStatus = domain.ForecastReady
	s.forecastErr = ""

	// Sticky selection: a refresh keeps the viewed day if the new payload
	// still has it. Initial fetches always reset to the first day.
	if mode == modeRefresh && data.HasDay(prev) {
		s.selectedDay = prev
	} else {
		s.selectedDay = data.DayOrder[0]
	}
}

func messageOrFallback(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return "request failed"
	}
	return err.Error()
}
