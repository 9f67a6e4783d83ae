// Package export renders dashboard snapshots as GeoJSON and CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/geo"
)

// Feature kinds, stored in the "kind" property.
const (
	KindArea     = "area"
	KindCentroid = "centroid"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"id", "lat", "lng", "value", "timestamp", "category"}

// GeoJSON builds a FeatureCollection with an area feature and a centroid
// feature per polygon.
func GeoJSON(v dashboard.View) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range v.Polygons {
		area := geojson.NewFeature(orb.Polygon{geo.Ring(p.Coordinates)})
		area.ID = p.ID
		area.Properties["kind"] = KindArea
		area.Properties["name"] = p.Name
		area.Properties["color"] = p.DisplayColor
		area.Properties["outline"] = p.Color
		area.Properties["areaKm2"] = p.AreaKm2
		if p.Weather != nil {
			area.Properties["metrics"] = p.Weather
			area.Properties["condition"] = p.Condition
		}
		fc.Append(area)

		centroid := geojson.NewFeature(p.Centroid.Point())
		centroid.ID = p.ID + "-centroid"
		centroid.Properties["kind"] = KindCentroid
		centroid.Properties["polygonId"] = p.ID
		if value, ok := metric(p, v); ok {
			centroid.Properties[string(v.SelectedDataSource)] = value
		}
		fc.Append(centroid)
	}
	return fc
}

// WriteCSV writes one row per polygon centroid carrying the selected data
// source value at the selection reference time. Polygons without weather
// get an empty value.
func WriteCSV(w io.Writer, v dashboard.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	ts := v.TimeSelection.Reference().Format(time.RFC3339)
	for _, p := range v.Polygons {
		value := ""
		if f, ok := metric(p, v); ok {
			value = strconv.FormatFloat(f, 'f', -1, 64)
		}
		row := []string{
			p.ID,
			strconv.FormatFloat(p.Centroid.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Centroid.Lng, 'f', -1, 64),
			value,
			ts,
			p.Condition,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func metric(p dashboard.PolygonView, v dashboard.View) (float64, bool) {
	if p.Weather == nil {
		return 0, false
	}
	return p.Weather.Value(v.SelectedDataSource)
}
