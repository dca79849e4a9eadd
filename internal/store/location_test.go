package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/skycast-app/skycast/internal/domain"
	"github.com/skycast-app/skycast/internal/observability"
	"github.com/skycast-app/skycast/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type failingKV struct {
	getErr error
	setErr error
}

func (f *failingKV) Get(_ context.Context, _ string) (string, error) {
	return "", f.getErr
}

func (f *failingKV) Set(_ context.Context, _, _ string) error {
	return f.setErr
}

func newLocationStore(kv store.KV) *store.LocationStore {
	return store.NewLocationStore(kv, slog.Default(), observability.NewMetricsForTesting())
}

// --- LocationStore tests ---

func TestLocationStore_LoadDefaultWhenEmpty(t *testing.T) {
	s := newLocationStore(store.NewMemory())

	loc := s.Load(context.Background())
	assert.Equal(t, domain.DefaultLocation(), loc)
	assert.Equal(t, "Berlin, Germany", s.LoadQuery(context.Background()))
}

func TestLocationStore_LoadDefaultWhenCorrupt(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "selectedLocation", "{not json"))

	s := newLocationStore(kv)
	assert.Equal(t, domain.DefaultLocation(), s.Load(context.Background()))
}

func TestLocationStore_SelectRoundtrip(t *testing.T) {
	kv := store.NewMemory()
	s := newLocationStore(kv)

	paris := domain.LocationMatch{
		ID: 2988507, Name: "Paris", Country: "France",
		Latitude: 48.85, Longitude: 2.35, Timezone: "Europe/Paris",
	}
	selected := s.Select(context.Background(), paris)
	assert.Equal(t, paris, selected)

	assert.Equal(t, paris, s.Load(context.Background()))
	assert.Equal(t, "Paris, France", s.LoadQuery(context.Background()))
}

func TestLocationStore_SelectReturnsCopy(t *testing.T) {
	s := newLocationStore(store.NewMemory())

	original := domain.LocationMatch{ID: 1, Name: "Oslo", Country: "Norway"}
	selected := s.Select(context.Background(), original)

	original.Name = "mutated"
	assert.Equal(t, "Oslo", selected.Name)
	assert.Equal(t, "Oslo", s.Load(context.Background()).Name)
}

func TestLocationStore_StorageFailuresAreSwallowed(t *testing.T) {
	kv := &failingKV{
		getErr: errors.New("disk on fire"),
		setErr: errors.New("quota exceeded"),
	}
	s := newLocationStore(kv)

	// Load degrades to the default, Select still returns a usable value.
	assert.Equal(t, domain.DefaultLocation(), s.Load(context.Background()))

	loc := domain.LocationMatch{ID: 7, Name: "Lima", Country: "Peru"}
	assert.Equal(t, loc, s.Select(context.Background(), loc))
}

// --- KV backend tests ---

func TestMemoryKV(t *testing.T) {
	kv := store.NewMemory()

	_, err := kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Set(context.Background(), "k", "v"))
	v, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileKV_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	kv := store.NewFile(path)

	_, err := kv.Get(context.Background(), "searchTerm")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Set(context.Background(), "searchTerm", "Paris, France"))
	require.NoError(t, kv.Set(context.Background(), "selectedLocation", `{"name":"Paris"}`))

	// A fresh handle sees both keys.
	kv2 := store.NewFile(path)
	v, err := kv2.Get(context.Background(), "searchTerm")
	require.NoError(t, err)
	assert.Equal(t, "Paris, France", v)

	raw, err := kv2.Get(context.Background(), "selectedLocation")
	require.NoError(t, err)
	var loc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &loc))
	assert.Equal(t, "Paris", loc["name"])
}
