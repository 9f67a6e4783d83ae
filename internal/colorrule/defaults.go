package colorrule

import (
	"math"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Open-ended bounds stay finite so rules survive a JSON round trip.
const (
	negInf = -math.MaxFloat64
	posInf = math.MaxFloat64
)

// DefaultRules returns one hand-authored rule per data source. A fresh
// slice is returned on every call.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:         "default-temperature",
			DataSource: weather.SourceTemperature,
			Conditions: []Condition{
				{Min: negInf, Max: 0, Color: "#1e3a8a", Label: "Freezing"},
				{Min: 0, Max: 10, Color: "#3b82f6", Label: "Cold"},
				{Min: 10, Max: 20, Color: "#22c55e", Label: "Mild"},
				{Min: 20, Max: 30, Color: "#f97316", Label: "Warm"},
				{Min: 30, Max: posInf, Color: "#dc2626", Label: "Hot"},
			},
		},
		{
			ID:         "default-humidity",
			DataSource: weather.SourceHumidity,
			Conditions: []Condition{
				{Min: 0, Max: 30, Color: "#fde68a", Label: "Dry"},
				{Min: 30, Max: 60, Color: "#34d399", Label: "Comfortable"},
				{Min: 60, Max: 80, Color: "#60a5fa", Label: "Moist"},
				{Min: 80, Max: 101, Color: "#1d4ed8", Label: "Humid"},
			},
		},
		{
			ID:         "default-windSpeed",
			DataSource: weather.SourceWindSpeed,
			Conditions: []Condition{
				{Min: 0, Max: 10, Color: "#d1fae5", Label: "Calm"},
				{Min: 10, Max: 20, Color: "#6ee7b7", Label: "Breezy"},
				{Min: 20, Max: 40, Color: "#f59e0b", Label: "Windy"},
				{Min: 40, Max: posInf, Color: "#b91c1c", Label: "Storm"},
			},
		},
		{
			ID:         "default-precipitation",
			DataSource: weather.SourcePrecipitation,
			Conditions: []Condition{
				{Min: 0, Max: 0.1, Color: "#f3f4f6", Label: "Dry"},
				{Min: 0.1, Max: 2, Color: "#93c5fd", Label: "Light"},
				{Min: 2, Max: 5, Color: "#3b82f6", Label: "Moderate"},
				{Min: 5, Max: posInf, Color: "#1e40af", Label: "Heavy"},
			},
		},
	}
}
