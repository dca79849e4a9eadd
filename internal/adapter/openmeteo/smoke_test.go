//go:build openmeteo

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/domain"
	"github.com/skycast-app/skycast/internal/observability"
)

// These tests hit the real Open-Meteo API (no key required).
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(10*time.Second, 10*time.Second, 10, clockwork.NewRealClock(), logger, observability.NewMetricsForTesting())
}

func TestSmoke_Search(t *testing.T) {
	c := smokeClient(t)

	matches, err := c.Search(context.Background(), "Berlin")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.Equal(t, "Berlin", matches[0].Name)
	assert.InDelta(t, 52.52, matches[0].Latitude, 0.5)
	assert.NotEmpty(t, matches[0].Timezone)
}

func TestSmoke_Forecast(t *testing.T) {
	c := smokeClient(t)

	data, err := c.Forecast(context.Background(), domain.DefaultLocation(), domain.UnitsMetric)
	require.NoError(t, err)

	assert.NotEmpty(t, data.DayOrder)
	assert.Len(t, data.Daily, len(data.DayOrder))
	assert.NotEmpty(t, data.HourlyByDay[data.DayOrder[0]])
	assert.NotEmpty(t, data.Current.Label)
}
