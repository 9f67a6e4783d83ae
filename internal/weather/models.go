package weather

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// DataSource names one of the four weather metrics a polygon can be colored by.
type DataSource string

const (
	SourceTemperature   DataSource = "temperature"
	SourceHumidity      DataSource = "humidity"
	SourceWindSpeed     DataSource = "windSpeed"
	SourcePrecipitation DataSource = "precipitation"
)

// DataSources lists every supported data source in display order.
var DataSources = []DataSource{
	SourceTemperature,
	SourceHumidity,
	SourceWindSpeed,
	SourcePrecipitation,
}

// Valid reports whether d is one of the known data sources.
func (d DataSource) Valid() bool {
	switch d {
	case SourceTemperature, SourceHumidity, SourceWindSpeed, SourcePrecipitation:
		return true
	}
	return false
}

// ParseDataSource converts a raw string into a DataSource.
func ParseDataSource(s string) (DataSource, error) {
	d := DataSource(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown data source %q", s)
	}
	return d, nil
}

// Metrics is the averaged weather view for a polygon centroid.
// Each field stays nil until the first fetch resolves.
type Metrics struct {
	Temperature   *float64 `json:"temperature,omitempty"`   // °C
	Humidity      *float64 `json:"humidity,omitempty"`      // %
	WindSpeed     *float64 `json:"windSpeed,omitempty"`     // km/h
	Precipitation *float64 `json:"precipitation,omitempty"` // mm
}

// Value returns the metric for source and whether it has been populated.
// Unknown sources report false.
func (m Metrics) Value(source DataSource) (float64, bool) {
	var v *float64
	switch source {
	case SourceTemperature:
		v = m.Temperature
	case SourceHumidity:
		v = m.Humidity
	case SourceWindSpeed:
		v = m.WindSpeed
	case SourcePrecipitation:
		v = m.Precipitation
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// valueOrZero reads a metric treating a missing value as 0.
func (m Metrics) valueOrZero(source DataSource) float64 {
	v, _ := m.Value(source)
	return v
}

// Populated reports whether every metric has a value.
func (m Metrics) Populated() bool {
	return m.Temperature != nil && m.Humidity != nil && m.WindSpeed != nil && m.Precipitation != nil
}

// NewMetrics builds a fully populated Metrics value.
func NewMetrics(temperature, humidity, windSpeed, precipitation float64) Metrics {
	return Metrics{
		Temperature:   common.Ptr(temperature),
		Humidity:      common.Ptr(humidity),
		WindSpeed:     common.Ptr(windSpeed),
		Precipitation: common.Ptr(precipitation),
	}
}

// HourlySeries is an hourly time series as returned by a provider: one timestamp
// per index and parallel per-metric arrays. Individual readings may be missing.
type HourlySeries struct {
	Times         []time.Time
	Temperature   []*float64
	Humidity      []*float64
	WindSpeed     []*float64
	Precipitation []*float64

	// Location is the zone the provider reported hours in; nil means UTC.
	Location *time.Location
}

// Len returns the number of hourly records.
func (s HourlySeries) Len() int {
	return len(s.Times)
}

// at reads the value at index i of a metric column, treating gaps as 0.
func at(column []*float64, i int) float64 {
	if i < 0 || i >= len(column) || column[i] == nil {
		return 0
	}
	return *column[i]
}
