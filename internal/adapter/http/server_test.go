package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/skycast-app/skycast/internal/adapter/http"
	"github.com/skycast-app/skycast/internal/domain"
	"github.com/skycast-app/skycast/internal/session"
)

// --- mock session ---

type mockSession struct {
	readyErr  error
	snapshot  session.Snapshot
	submitted []string
	selected  []int
	selectErr error
	units     []domain.Units
	unitsErr  error
	days      []string
}

func (m *mockSession) Snapshot() session.Snapshot { return m.snapshot }

func (m *mockSession) Submit(_ context.Context, query string) {
	m.submitted = append(m.submitted, query)
}

func (m *mockSession) SelectIndex(_ context.Context, i int) error {
	m.selected = append(m.selected, i)
	return m.selectErr
}

func (m *mockSession) SetUnits(units domain.Units) error {
	m.units = append(m.units, units)
	return m.unitsErr
}

func (m *mockSession) SelectDay(day string) { m.days = append(m.days, day) }

func (m *mockSession) CheckReadiness(_ context.Context) error { return m.readyErr }

func newTestServer(m *mockSession) *httpadapter.Server {
	return httpadapter.NewServer(":0", m, slog.Default())
}

func doJSON(t *testing.T, srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHealthzReturns200(t *testing.T) {
	rec := doJSON(t, newTestServer(&mockSession{}), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := doJSON(t, newTestServer(&mockSession{}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	m := &mockSession{readyErr: errors.New("not ready yet")}
	rec := doJSON(t, newTestServer(m), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready yet", body["error"])
}

func TestState_ReturnsSnapshot(t *testing.T) {
	m := &mockSession{snapshot: session.Snapshot{
		Query:          "Berlin, Germany",
		SearchStatus:   domain.SearchIdle,
		ForecastStatus: domain.ForecastReady,
		SelectedDay:    "2026-08-29",
		Units:          domain.UnitsMetric,
	}}
	rec := doJSON(t, newTestServer(m), http.MethodGet, "/api/state", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "Berlin, Germany", snap.Query)
	assert.Equal(t, domain.ForecastReady, snap.ForecastStatus)
	assert.Equal(t, "2026-08-29", snap.SelectedDay)
}

func TestSearch_SubmitsQuery(t *testing.T) {
	m := &mockSession{}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/search", `{"query":"Paris"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Paris"}, m.submitted)
}

func TestSearch_RejectsBadBody(t *testing.T) {
	m := &mockSession{}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/search", "{")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, m.submitted)
}

func TestSelect_PassesIndex(t *testing.T) {
	m := &mockSession{}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/select", `{"index":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{1}, m.selected)
}

func TestSelect_OutOfRangeIs400(t *testing.T) {
	m := &mockSession{selectErr: session.ErrNoSuchResult}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/select", `{"index":9}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDay_RequiresDay(t *testing.T) {
	m := &mockSession{}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/day", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, m.days)
}

func TestDay_SelectsDay(t *testing.T) {
	m := &mockSession{}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/day", `{"day":"2026-08-30"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2026-08-30"}, m.days)
}

func TestUnits_SetsUnits(t *testing.T) {
	m := &mockSession{}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/units", `{"units":"imperial"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.Units{domain.UnitsImperial}, m.units)
}

func TestUnits_RejectsUnknown(t *testing.T) {
	m := &mockSession{unitsErr: errors.New("unknown units")}
	rec := doJSON(t, newTestServer(m), http.MethodPost, "/api/units", `{"units":"kelvin"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
