package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/skycast-app/skycast/internal/domain"
	"github.com/skycast-app/skycast/internal/observability"
)

// Keys under which session settings are persisted.
const (
	keySelectedLocation = "selectedLocation"
	keySearchTerm       = "searchTerm"
)

// LocationStore persists the explicitly selected location and its canonical
// search term. Every operation is best-effort: storage failures are logged,
// counted, and swallowed, and loads fall back to the compiled-in default.
type LocationStore struct {
	kv      KV
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLocationStore creates a LocationStore on top of the given KV backend.
func NewLocationStore(kv KV, logger *slog.Logger, metrics *observability.Metrics) *LocationStore {
	return &LocationStore{kv: kv, logger: logger, metrics: metrics}
}

// Load returns the persisted location, or the compiled-in default when the
// key is absent or the stored JSON is corrupt. It never fails.
func (s *LocationStore) Load(ctx context.Context) domain.LocationMatch {
	raw, err := s.kv.Get(ctx, keySelectedLocation)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("load selected location failed", "error", err)
			s.metrics.PersistenceErrors.Inc()
		}
		return domain.DefaultLocation()
	}

	var loc domain.LocationMatch
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		s.logger.Warn("persisted location is corrupt, using default", "error", err)
		s.metrics.PersistenceErrors.Inc()
		return domain.DefaultLocation()
	}
	if loc.Name == "" {
		return domain.DefaultLocation()
	}
	return loc
}

// LoadQuery returns the persisted search term, or the default location's
// canonical form when absent or unreadable.
func (s *LocationStore) LoadQuery(ctx context.Context) string {
	v, err := s.kv.Get(ctx, keySearchTerm)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("load search term failed", "error", err)
			s.metrics.PersistenceErrors.Inc()
		}
		return domain.DefaultLocation().Canonical()
	}
	return v
}

// Select makes a defensive copy of loc, persists it together with its
// canonical search term, and returns the copy. Persistence failures are
// logged and swallowed; the returned copy is valid regardless.
func (s *LocationStore) Select(ctx context.Context, loc domain.LocationMatch) domain.LocationMatch {
	// LocationMatch is a value type, so assignment already copies; keeping
	// the copy explicit guarantees callers can't alias the published value.
	selected := loc

	raw, err := json.Marshal(selected)
	if err != nil {
		s.logger.Warn("encode selected location failed", "error", err)
		s.metrics.PersistenceErrors.Inc()
		return selected
	}
	if err := s.kv.Set(ctx, keySelectedLocation, string(raw)); err != nil {
		s.logger.Warn("persist selected location failed", "error", err)
		s.metrics.PersistenceErrors.Inc()
	}
	s.SaveQuery(ctx, selected.Canonical())
	return selected
}

// SaveQuery persists the canonical search term, best-effort.
func (s *LocationStore) SaveQuery(ctx context.Context, query string) {
	if err := s.kv.Set(ctx, keySearchTerm, query); err != nil {
		s.logger.Warn("persist search term failed", "error", err)
		s.metrics.PersistenceErrors.Inc()
	}
}
