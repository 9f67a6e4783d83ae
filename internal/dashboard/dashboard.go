// Package dashboard owns the mutable dashboard state (polygons, color rules,
// selected data source, time window and map view), keeps polygon weather in
// sync with the time window and mirrors every change into the store.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-dashboard/internal/colorrule"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrPolygonNotFound is returned for unknown polygon ids.
var ErrPolygonNotFound = errors.New("polygon not found")

// DefaultConcurrency bounds parallel weather fetches during a refresh.
const DefaultConcurrency = 8

// basePalette is cycled through to give each new polygon an outline color.
var basePalette = []string{"#3388ff", "#e4572e", "#17bebb", "#ffc914", "#76b041", "#8e44ad"}

// Fetcher resolves weather metrics for a point and window. Implementations
// must not fail; weather.Service falls back to synthetic data.
type Fetcher interface {
	FetchWeatherData(ctx context.Context, lat, lng float64, start, end time.Time) weather.Metrics
}

// Dashboard is safe for concurrent use.
type Dashboard struct {
	fetcher     Fetcher
	store       *store.Store
	now         func() time.Time
	concurrency int

	mu          sync.Mutex
	polygons    []store.Polygon
	rules       []colorrule.Rule
	source      weather.DataSource
	window      *timewindow.Model
	mapView     store.MapView
	generations map[string]uint64
	created     int
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// WithConcurrency bounds parallel fetches; values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(d *Dashboard) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// New restores the dashboard from st.
func New(fetcher Fetcher, st *store.Store, opts ...Option) *Dashboard {
	d := &Dashboard{
		fetcher:     fetcher,
		store:       st,
		now:         time.Now,
		concurrency: DefaultConcurrency,
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.restore(st.Load())
	return d
}

func (d *Dashboard) restore(state store.State) {
	d.polygons = state.Polygons
	d.rules = state.ColorRules
	d.source = state.SelectedDataSource
	d.window = timewindow.NewWithSelection(d.now(), state.TimeSelection)
	d.mapView = state.MapView
	d.generations = make(map[string]uint64)
	d.created = len(state.Polygons)

	log.Printf("INFO: dashboard restored with %d polygons, source %s, %s",
		len(d.polygons), d.source, d.window.Selection())
}

// AddPolygon validates a drawn polygon, stores it and fetches its weather
// for the current window. Invalid geometry is refused with
// geo.ErrInvalidPolygon and nothing is stored.
func (d *Dashboard) AddPolygon(ctx context.Context, name string, coords []geo.Coordinate) (PolygonView, error) {
	if err := geo.ValidatePolygon(coords); err != nil {
		return PolygonView{}, err
	}

	d.mu.Lock()
	d.created++
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Polygon %d", d.created)
	}
	p := store.Polygon{
		ID:          uuid.NewString(),
		Name:        name,
		Coordinates: append([]geo.Coordinate(nil), coords...),
		Color:       basePalette[(d.created-1)%len(basePalette)],
		AreaKm2:     geo.PolygonArea(coords),
		Centroid:    geo.Centroid(coords),
		CreatedAt:   d.now().UTC(),
	}
	d.polygons = append(d.polygons, p)
	job := d.nextJobLocked(p)
	start, end := d.window.Selection().Window()
	d.persistPolygonsLocked()
	d.mu.Unlock()

	log.Printf("INFO: polygon %s (%s) added, area %.3f km²", p.ID, p.Name, p.AreaKm2)

	d.run(ctx, job, start, end)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.persistPolygonsLocked()
	if i := d.indexLocked(p.ID); i >= 0 {
		return d.viewLocked(d.polygons[i]), nil
	}
	return PolygonView{}, ErrPolygonNotFound
}

// RemovePolygon deletes a polygon from memory and storage.
func (d *Dashboard) RemovePolygon(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPolygonNotFound, id)
	}
	d.polygons = append(d.polygons[:i], d.polygons[i+1:]...)
	delete(d.generations, id)
	d.persistPolygonsLocked()

	log.Printf("INFO: polygon %s removed", id)
	return nil
}

// Polygon returns one polygon with its resolved display color.
func (d *Dashboard) Polygon(id string) (PolygonView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(id)
	if i < 0 {
		return PolygonView{}, fmt.Errorf("%w: %s", ErrPolygonNotFound, id)
	}
	return d.viewLocked(d.polygons[i]), nil
}

// Polygons lists every polygon in creation order.
func (d *Dashboard) Polygons() []PolygonView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewsLocked()
}

// PolygonsContaining lists the polygons whose area contains pt.
func (d *Dashboard) PolygonsContaining(pt geo.Coordinate) []PolygonView {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []PolygonView
	for _, p := range d.polygons {
		if geo.PointInPolygon(pt, p.Coordinates) {
			out = append(out, d.viewLocked(p))
		}
	}
	return out
}

// Refresh refetches weather for every polygon over the current window.
// Fetches run concurrently and a slow or failing polygon never holds back
// or cancels the others. It returns once every fetch has resolved.
func (d *Dashboard) Refresh(ctx context.Context) {
	d.mu.Lock()
	start, end := d.window.Selection().Window()
	jobs := make([]fetchJob, 0, len(d.polygons))
	for _, p := range d.polygons {
		jobs = append(jobs, d.nextJobLocked(p))
	}
	d.mu.Unlock()

	if len(jobs) == 0 {
		return
	}

	began := time.Now()
	// Jobs never return errors; the group only bounds concurrency.
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			d.run(ctx, job, start, end)
			return nil
		})
	}
	_ = g.Wait()

	d.mu.Lock()
	d.persistPolygonsLocked()
	d.mu.Unlock()

	log.Printf("DEBUG: refreshed %d polygons for %s in %s", len(jobs), d.describeWindow(start, end), time.Since(began))
}

// fetchJob is one polygon fetch tagged with the generation it was issued
// under.
type fetchJob struct {
	id         string
	centroid   geo.Coordinate
	generation uint64
}

func (d *Dashboard) nextJobLocked(p store.Polygon) fetchJob {
	d.generations[p.ID]++
	return fetchJob{id: p.ID, centroid: p.Centroid, generation: d.generations[p.ID]}
}

// run fetches and applies one job. A response is discarded when a newer
// request for the same polygon has been issued meanwhile, or when the
// polygon is gone.
func (d *Dashboard) run(ctx context.Context, job fetchJob, start, end time.Time) {
	m := d.fetcher.FetchWeatherData(ctx, job.centroid.Lat, job.centroid.Lng, start, end)
	if ctx.Err() != nil {
		log.Printf("DEBUG: fetch for polygon %s abandoned: %v", job.id, ctx.Err())
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.generations[job.id] != job.generation {
		log.Printf("DEBUG: discarding stale weather for polygon %s (generation %d, current %d)",
			job.id, job.generation, d.generations[job.id])
		return
	}
	if i := d.indexLocked(job.id); i >= 0 {
		d.polygons[i].Weather = &m
	}
}

func (d *Dashboard) describeWindow(start, end time.Time) string {
	if start.Equal(end) {
		return start.Format(time.RFC3339)
	}
	return start.Format(time.RFC3339) + ".." + end.Format(time.RFC3339)
}

func (d *Dashboard) indexLocked(id string) int {
	for i, p := range d.polygons {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (d *Dashboard) persistPolygonsLocked() {
	polys := append([]store.Polygon{}, d.polygons...)
	d.store.Save(store.Partial{Polygons: &polys})
}

// Close flushes pending writes.
func (d *Dashboard) Close() error {
	return d.store.Close()
}
