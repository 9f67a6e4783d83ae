package dashboard

import (
	"fmt"
	"log"

	"github.com/i474232898/weather-dashboard/internal/colorrule"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// PolygonView is a polygon as rendered: the stored polygon plus the color
// resolved from the active rules and a condition label.
type PolygonView struct {
	store.Polygon
	DisplayColor string `json:"displayColor"`
	Condition    string `json:"condition,omitempty"`
}

// View is a consistent snapshot of the whole dashboard.
type View struct {
	Polygons           []PolygonView        `json:"polygons"`
	ColorRules         []colorrule.Rule     `json:"colorRules"`
	SelectedDataSource weather.DataSource   `json:"selectedDataSource"`
	TimeSelection      timewindow.Selection `json:"timeSelection"`
	Extent             timewindow.Extent    `json:"extent"`
	MapView            store.MapView        `json:"mapView"`
}

// Snapshot returns the current state.
func (d *Dashboard) Snapshot() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	return View{
		Polygons:           d.viewsLocked(),
		ColorRules:         append([]colorrule.Rule{}, d.rules...),
		SelectedDataSource: d.source,
		TimeSelection:      d.window.Selection(),
		Extent:             d.window.Extent(),
		MapView:            d.mapView,
	}
}

func (d *Dashboard) viewLocked(p store.Polygon) PolygonView {
	v := PolygonView{
		Polygon:      p,
		DisplayColor: colorrule.ResolveMetrics(d.rules, d.source, p.Weather),
	}
	if p.Weather != nil {
		v.Condition = weather.DescribeConditions(*p.Weather)
	}
	return v
}

func (d *Dashboard) viewsLocked() []PolygonView {
	out := make([]PolygonView, 0, len(d.polygons))
	for _, p := range d.polygons {
		out = append(out, d.viewLocked(p))
	}
	return out
}

// ColorRules returns the active rules.
func (d *Dashboard) ColorRules() []colorrule.Rule {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]colorrule.Rule{}, d.rules...)
}

// SetColorRules replaces the rule set. The whole set is rejected if any
// rule is invalid.
func (d *Dashboard) SetColorRules(rules []colorrule.Rule) ([]colorrule.Rule, error) {
	valid, err := colorrule.ValidateRules(rules)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.rules = valid
	d.store.Save(store.Partial{ColorRules: &valid})
	log.Printf("INFO: %d color rules saved", len(valid))
	return append([]colorrule.Rule{}, valid...), nil
}

// SetDataSource changes the metric polygons are colored by.
func (d *Dashboard) SetDataSource(src weather.DataSource) error {
	if !src.Valid() {
		return fmt.Errorf("unknown data source %q", src)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.source = src
	d.store.Save(store.Partial{SelectedDataSource: &src})
	return nil
}

// SetMapView records the map position. Writes are debounced because the UI
// reports every pan and zoom step.
func (d *Dashboard) SetMapView(mv store.MapView) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.mapView = mv
	d.store.SaveDebounced(store.Partial{MapView: &mv})
}

// Reset clears storage and returns to the default state.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.store.Clear()
	d.restore(d.store.Load())
	log.Printf("INFO: dashboard reset to defaults")
}
