package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-dashboard/internal/colorrule"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultKey is the storage key of the dashboard blob.
const DefaultKey = "weather-dashboard-state"

const (
	fieldVersion    = "version"
	fieldPolygons   = "polygons"
	fieldColorRules = "colorRules"
	fieldDataSource = "selectedDataSource"
	fieldTimeSel    = "timeSelection"
	fieldMapView    = "mapView"
)

var validate = validator.New()

// Store persists the dashboard state as one JSON object under a fixed key.
// Every failure is logged and swallowed: Save and Clear never return errors
// and Load always returns a complete State.
type Store struct {
	backend Backend
	key     string
	now     func() time.Time

	mu sync.Mutex

	debounce time.Duration
	pending  *Partial
	timer    *time.Timer
	// seq identifies the latest debounce timer; a timer that fired before
	// being superseded finds a newer seq and does nothing.
	seq uint64
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithDebounce sets the quiet period used by SaveDebounced.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithClock overrides time.Now for default time selections.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store. A nil backend behaves like unavailable storage:
// writes are dropped and Load returns defaults.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		key:      DefaultKey,
		now:      time.Now,
		debounce: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save merges the non-nil fields of p into the stored blob.
// Pending debounced fields not overridden by p are written too.
func (s *Store) Save(p Partial) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		p = s.pending.merge(p)
		s.stopTimerLocked()
	}
	s.writeLocked(p)
}

// SaveDebounced queues p and writes it once no further call arrives for
// the debounce period. Later calls override earlier fields.
func (s *Store) SaveDebounced(p Partial) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		s.pending = &Partial{}
	}
	merged := s.pending.merge(p)
	s.pending = &merged

	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timer = time.AfterFunc(s.debounce, func() { s.flushDebounced(seq) })
}

// flushDebounced is run by the debounce timer armed with seq.
func (s *Store) flushDebounced(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq || s.pending == nil {
		return
	}
	p := *s.pending
	s.stopTimerLocked()
	s.writeLocked(p)
}

// Flush writes any pending debounced fields immediately.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return
	}
	p := *s.pending
	s.stopTimerLocked()
	s.writeLocked(p)
}

// Clear removes the persisted blob and drops pending writes.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	if s.backend == nil {
		return
	}
	if err := s.backend.Remove(s.key); err != nil {
		log.Printf("WARN: failed to clear stored state: %v", err)
	}
}

// Close flushes pending writes and closes the backend.
func (s *Store) Close() error {
	s.Flush()
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}

func (s *Store) writeLocked(p Partial) {
	if s.backend == nil {
		log.Printf("WARN: storage unavailable; state not saved")
		return
	}

	raw, err := s.readRawLocked()
	if err != nil && !errors.Is(err, ErrNotFound) {
		// A corrupt blob is replaced rather than merged.
		log.Printf("WARN: discarding unreadable stored state: %v", err)
	}
	if raw == nil {
		raw = make(map[string]json.RawMessage)
	}

	set := func(field string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			log.Printf("ERROR: failed to encode %s: %v", field, err)
			return
		}
		raw[field] = b
	}

	set(fieldVersion, CurrentVersion)
	if p.Polygons != nil {
		set(fieldPolygons, *p.Polygons)
	}
	if p.ColorRules != nil {
		set(fieldColorRules, *p.ColorRules)
	}
	if p.SelectedDataSource != nil {
		set(fieldDataSource, *p.SelectedDataSource)
	}
	if p.TimeSelection != nil {
		set(fieldTimeSel, *p.TimeSelection)
	}
	if p.MapView != nil {
		set(fieldMapView, *p.MapView)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		log.Printf("ERROR: failed to encode state: %v", err)
		return
	}
	if err := s.backend.Set(s.key, data); err != nil {
		log.Printf("WARN: failed to save state: %v", err)
	}
}

func (s *Store) readRawLocked() (map[string]json.RawMessage, error) {
	data, err := s.backend.Get(s.key)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse stored state: %w", err)
	}
	return raw, nil
}

// Load reads the stored state, substituting defaults field by field for
// anything missing or malformed. Pending debounced writes are flushed first.
func (s *Store) Load() State {
	s.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := DefaultState(s.now())
	if s.backend == nil {
		log.Printf("WARN: storage unavailable; using default state")
		return st
	}

	raw, err := s.readRawLocked()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("WARN: failed to load stored state, using defaults: %v", err)
		}
		return st
	}

	if v, ok := raw[fieldVersion]; ok {
		var version int
		if err := json.Unmarshal(v, &version); err == nil && version > CurrentVersion {
			log.Printf("INFO: stored state version %d is newer than %d; reading known fields", version, CurrentVersion)
		}
	}

	if v, ok := raw[fieldPolygons]; ok {
		if polys, err := decodePolygons(v); err != nil {
			log.Printf("WARN: stored polygons malformed, using defaults: %v", err)
		} else {
			st.Polygons = polys
		}
	}

	if v, ok := raw[fieldColorRules]; ok {
		if rules, err := decodeColorRules(v); err != nil {
			log.Printf("WARN: stored color rules malformed, using defaults: %v", err)
		} else {
			st.ColorRules = rules
		}
	}

	if v, ok := raw[fieldDataSource]; ok {
		var src string
		if err := decodeShape(v, '"', &src); err != nil {
			log.Printf("WARN: stored data source malformed, using default: %v", err)
		} else if ds, err := weather.ParseDataSource(src); err != nil {
			log.Printf("WARN: %v; using default", err)
		} else {
			st.SelectedDataSource = ds
		}
	}

	if v, ok := raw[fieldTimeSel]; ok {
		var sel timewindow.Selection
		if err := decodeShape(v, '{', &sel); err != nil {
			log.Printf("WARN: stored time selection malformed, using default: %v", err)
		} else {
			st.TimeSelection = sel
		}
	}

	if v, ok := raw[fieldMapView]; ok {
		var mv MapView
		if err := decodeShape(v, '{', &mv); err != nil {
			log.Printf("WARN: stored map view malformed, using default: %v", err)
		} else if err := validateMapView(mv); err != nil {
			log.Printf("WARN: stored map view invalid, using default: %v", err)
		} else {
			st.MapView = mv
		}
	}

	return st
}

// decodeShape checks the JSON kind by its first byte before decoding.
func decodeShape(raw json.RawMessage, open byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != open {
		return fmt.Errorf("unexpected JSON shape %q", abbreviate(trimmed))
	}
	return json.Unmarshal(trimmed, v)
}

func decodePolygons(raw json.RawMessage) ([]Polygon, error) {
	var items []json.RawMessage
	if err := decodeShape(raw, '[', &items); err != nil {
		return nil, err
	}

	polys := make([]Polygon, 0, len(items))
	for i, item := range items {
		var p Polygon
		if err := decodeShape(item, '{', &p); err != nil {
			log.Printf("WARN: skipping stored polygon %d: %v", i, err)
			continue
		}
		if err := p.Validate(); err != nil {
			log.Printf("WARN: skipping stored polygon %q: %v", p.ID, err)
			continue
		}
		polys = append(polys, p)
	}
	return polys, nil
}

func decodeColorRules(raw json.RawMessage) ([]colorrule.Rule, error) {
	var rules []colorrule.Rule
	if err := decodeShape(raw, '[', &rules); err != nil {
		return nil, err
	}
	valid, err := colorrule.ValidateRules(rules)
	if err != nil {
		if len(valid) == 0 {
			return nil, fmt.Errorf("no valid rule among %d stored: %w", len(rules), err)
		}
		log.Printf("WARN: dropping invalid stored color rules: %v", err)
	}
	return valid, nil
}

func validateMapView(mv MapView) error {
	if err := mv.Center.Validate(); err != nil {
		return err
	}
	return validate.Struct(mv)
}

func abbreviate(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
