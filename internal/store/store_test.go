package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/colorrule"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var fixedNow = time.Date(2026, 10, 17, 9, 15, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func samplePolygon() Polygon {
	m := weather.NewMetrics(21.3, 60, 12.5, 0.4)
	coords := []geo.Coordinate{
		{Lat: 40.70, Lng: -74.01},
		{Lat: 40.72, Lng: -74.00},
		{Lat: 40.71, Lng: -73.99},
	}
	return Polygon{
		ID:          "p1",
		Name:        "Zone A",
		Coordinates: coords,
		Color:       "#ff0000",
		AreaKm2:     geo.PolygonArea(coords),
		Centroid:    geo.Centroid(coords),
		Weather:     &m,
		CreatedAt:   fixedNow,
	}
}

func sampleState() State {
	return State{
		Version:  CurrentVersion,
		Polygons: []Polygon{samplePolygon()},
		ColorRules: []colorrule.Rule{{
			ID:         "r1",
			DataSource: weather.SourceHumidity,
			Conditions: []colorrule.Condition{{Min: 0, Max: 50, Color: "#00ff00", Label: "dry"}},
		}},
		SelectedDataSource: weather.SourceHumidity,
		TimeSelection:      timewindow.Range(fixedNow.Truncate(time.Hour), fixedNow.Truncate(time.Hour).Add(3*time.Hour)),
		MapView:            MapView{Center: geo.Coordinate{Lat: 51.5, Lng: -0.12}, Zoom: 7},
	}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sq, err := OpenSQLiteBackend(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Backend{
		BackendMemory: NewMemoryBackend(),
		BackendFile:   NewFileBackend(filepath.Join(t.TempDir(), "state")),
		BackendSQLite: sq,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b, WithClock(clock))
			want := sampleState()

			s.Save(FullPartial(want))
			got := s.Load()

			assert.Equal(t, want, got)
		})
	}
}

func TestPartialSaveKeepsOtherFields(t *testing.T) {
	s := New(NewMemoryBackend(), WithClock(clock))
	full := sampleState()
	s.Save(FullPartial(full))

	src := weather.SourceWindSpeed
	s.Save(Partial{SelectedDataSource: &src})

	got := s.Load()
	assert.Equal(t, weather.SourceWindSpeed, got.SelectedDataSource)
	assert.Equal(t, full.Polygons, got.Polygons)
	assert.Equal(t, full.ColorRules, got.ColorRules)
	assert.Equal(t, full.MapView, got.MapView)
	assert.True(t, full.TimeSelection.Equal(got.TimeSelection))
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	s := New(NewMemoryBackend(), WithClock(clock))
	assert.Equal(t, DefaultState(fixedNow), s.Load())
}

func TestLoadWithoutBackend(t *testing.T) {
	s := New(nil, WithClock(clock))
	s.Save(FullPartial(sampleState()))
	s.Clear()
	assert.Equal(t, DefaultState(fixedNow), s.Load())
}

func TestLoadCorruptBlob(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Set(DefaultKey, []byte("{not json")))

	s := New(b, WithClock(clock))
	assert.Equal(t, DefaultState(fixedNow), s.Load())

	// The next save replaces the corrupt blob.
	src := weather.SourcePrecipitation
	s.Save(Partial{SelectedDataSource: &src})
	assert.Equal(t, weather.SourcePrecipitation, s.Load().SelectedDataSource)
}

func TestLoadMalformedFieldsFallBackIndividually(t *testing.T) {
	b := NewMemoryBackend()
	blob := `{
		"polygons": {"not": "an array"},
		"colorRules": "nope",
		"selectedDataSource": "pressure",
		"timeSelection": {"mode": "loop"},
		"mapView": {"center": {"lat": 10, "lng": 20}, "zoom": 5}
	}`
	require.NoError(t, b.Set(DefaultKey, []byte(blob)))

	got := New(b, WithClock(clock)).Load()
	def := DefaultState(fixedNow)

	assert.Equal(t, def.Polygons, got.Polygons)
	assert.Equal(t, def.ColorRules, got.ColorRules)
	assert.Equal(t, def.SelectedDataSource, got.SelectedDataSource)
	assert.Equal(t, def.TimeSelection, got.TimeSelection)
	assert.Equal(t, MapView{Center: geo.Coordinate{Lat: 10, Lng: 20}, Zoom: 5}, got.MapView)
}

func TestLoadFiltersInvalidPolygons(t *testing.T) {
	b := NewMemoryBackend()
	blob := `{"polygons": [
		{"id": "ok", "coordinates": [{"lat":0,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":1}]},
		{"id": "two-points", "coordinates": [{"lat":0,"lng":0},{"lat":0,"lng":1}]},
		{"id": "out-of-range", "coordinates": [{"lat":95,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":1}]},
		{"coordinates": [{"lat":0,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":1}]},
		"garbage"
	]}`
	require.NoError(t, b.Set(DefaultKey, []byte(blob)))

	got := New(b, WithClock(clock)).Load()
	require.Len(t, got.Polygons, 1)
	assert.Equal(t, "ok", got.Polygons[0].ID)
}

func TestLoadAllInvalidRulesFallBackToDefaults(t *testing.T) {
	b := NewMemoryBackend()
	blob := `{"colorRules": [{"id": "x", "dataSource": "pressure", "conditions": []}]}`
	require.NoError(t, b.Set(DefaultKey, []byte(blob)))

	got := New(b, WithClock(clock)).Load()
	assert.Equal(t, colorrule.DefaultRules(), got.ColorRules)
}

func TestLoadKeepsEmptyRuleSet(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Set(DefaultKey, []byte(`{"colorRules": []}`)))

	got := New(b, WithClock(clock)).Load()
	assert.Empty(t, got.ColorRules)
}

func TestClearRemovesBlob(t *testing.T) {
	b := NewMemoryBackend()
	s := New(b, WithClock(clock))
	s.Save(FullPartial(sampleState()))

	s.Clear()

	_, err := b.Get(DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, DefaultState(fixedNow), s.Load())
}

func TestSaveDebouncedCoalesces(t *testing.T) {
	b := NewMemoryBackend()
	s := New(b, WithClock(clock), WithDebounce(20*time.Millisecond))

	for i := 0; i < 5; i++ {
		mv := MapView{Center: geo.Coordinate{Lat: float64(i), Lng: 0}, Zoom: 3}
		s.SaveDebounced(Partial{MapView: &mv})
	}

	_, err := b.Get(DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound, "nothing written before the quiet period")

	require.Eventually(t, func() bool {
		_, err := b.Get(DefaultKey)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 4.0, s.Load().MapView.Center.Lat)
}

func TestSupersededDebounceTimerDoesNotFlush(t *testing.T) {
	b := NewMemoryBackend()
	s := New(b, WithClock(clock), WithDebounce(time.Hour))

	first := MapView{Center: geo.Coordinate{Lat: 1, Lng: 1}, Zoom: 3}
	s.SaveDebounced(Partial{MapView: &first})
	s.mu.Lock()
	stale := s.seq
	s.mu.Unlock()

	second := MapView{Center: geo.Coordinate{Lat: 2, Lng: 2}, Zoom: 3}
	s.SaveDebounced(Partial{MapView: &second})

	// The first timer fired before the second call stopped it.
	s.flushDebounced(stale)
	_, err := b.Get(DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound, "a superseded timer must not write")

	s.mu.Lock()
	current := s.seq
	s.mu.Unlock()
	s.flushDebounced(current)
	raw, err := b.Get(DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lat":2`)
}

func TestSaveFlushesPendingDebounced(t *testing.T) {
	s := New(NewMemoryBackend(), WithClock(clock), WithDebounce(time.Hour))

	mv := MapView{Center: geo.Coordinate{Lat: 1, Lng: 2}, Zoom: 4}
	s.SaveDebounced(Partial{MapView: &mv})

	src := weather.SourceHumidity
	s.Save(Partial{SelectedDataSource: &src})

	got := s.Load()
	assert.Equal(t, mv, got.MapView)
	assert.Equal(t, weather.SourceHumidity, got.SelectedDataSource)
}

func TestCustomKey(t *testing.T) {
	b := NewMemoryBackend()
	s := New(b, WithKey("other"), WithClock(clock))
	s.Save(FullPartial(sampleState()))

	_, err := b.Get("other")
	assert.NoError(t, err)
	_, err = b.Get(DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenBackend(t *testing.T) {
	b, err := OpenBackend(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	_, err = OpenBackend("redis", "")
	assert.Error(t, err)
}
