package store

import (
	"errors"
	"time"

	"github.com/i474232898/weather-dashboard/internal/colorrule"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// CurrentVersion is written into every saved blob.
const CurrentVersion = 1

// Polygon is a user-drawn area and the weather derived for its centroid.
type Polygon struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Coordinates []geo.Coordinate `json:"coordinates"`
	Color       string           `json:"color"`
	AreaKm2     float64          `json:"areaKm2"`
	Centroid    geo.Coordinate   `json:"centroid"`
	Weather     *weather.Metrics `json:"weatherData,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Validate checks the id and geometry.
func (p Polygon) Validate() error {
	if p.ID == "" {
		return errors.New("polygon id is required")
	}
	return geo.ValidatePolygon(p.Coordinates)
}

// MapView is the last map position. It is persisted but never used in
// computation.
type MapView struct {
	Center geo.Coordinate `json:"center"`
	Zoom   float64        `json:"zoom" validate:"gte=0,lte=22"`
}

// State is everything the dashboard mirrors into storage.
type State struct {
	Version            int                  `json:"version"`
	Polygons           []Polygon            `json:"polygons"`
	ColorRules         []colorrule.Rule     `json:"colorRules"`
	SelectedDataSource weather.DataSource   `json:"selectedDataSource"`
	TimeSelection      timewindow.Selection `json:"timeSelection"`
	MapView            MapView              `json:"mapView"`
}

// Partial names the fields to write; nil fields are left untouched.
type Partial struct {
	Polygons           *[]Polygon
	ColorRules         *[]colorrule.Rule
	SelectedDataSource *weather.DataSource
	TimeSelection      *timewindow.Selection
	MapView            *MapView
}

// FullPartial wraps every field of st.
func FullPartial(st State) Partial {
	return Partial{
		Polygons:           &st.Polygons,
		ColorRules:         &st.ColorRules,
		SelectedDataSource: &st.SelectedDataSource,
		TimeSelection:      &st.TimeSelection,
		MapView:            &st.MapView,
	}
}

// merge overlays the non-nil fields of o onto p.
func (p Partial) merge(o Partial) Partial {
	if o.Polygons != nil {
		p.Polygons = o.Polygons
	}
	if o.ColorRules != nil {
		p.ColorRules = o.ColorRules
	}
	if o.SelectedDataSource != nil {
		p.SelectedDataSource = o.SelectedDataSource
	}
	if o.TimeSelection != nil {
		p.TimeSelection = o.TimeSelection
	}
	if o.MapView != nil {
		p.MapView = o.MapView
	}
	return p
}

// DefaultMapView is centered on New York.
var DefaultMapView = MapView{
	Center: geo.Coordinate{Lat: 40.7128, Lng: -74.0060},
	Zoom:   10,
}

// DefaultState is used for every field that is missing or malformed.
func DefaultState(now time.Time) State {
	return State{
		Version:            CurrentVersion,
		Polygons:           []Polygon{},
		ColorRules:         colorrule.DefaultRules(),
		SelectedDataSource: weather.SourceTemperature,
		TimeSelection:      timewindow.Single(now.UTC().Truncate(time.Hour)),
		MapView:            DefaultMapView,
	}
}
