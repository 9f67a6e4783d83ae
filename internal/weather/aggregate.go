package weather

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// SelectIndices returns the series indices covered by the window [start, end].
//
// When start equals end only the record whose time equals start truncated to
// the hour in the series location is selected; otherwise every record with
// start <= t <= end is.
func SelectIndices(series HourlySeries, start, end time.Time) []int {
	if start.Equal(end) {
		target := common.TruncateHour(start, series.Location)
		for i, ts := range series.Times {
			if ts.Equal(target) {
				return []int{i}
			}
		}
		return nil
	}

	var idx []int
	for i, ts := range series.Times {
		if !ts.Before(start) && !ts.After(end) {
			idx = append(idx, i)
		}
	}
	return idx
}

// AverageReadings averages the four metrics over the selected indices.
// Missing readings count as 0 and every average is rounded to one decimal.
// It returns false when indices is empty.
func AverageReadings(series HourlySeries, indices []int) (Metrics, bool) {
	if len(indices) == 0 {
		return Metrics{}, false
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		sumPrecip   float64
	)

	for _, i := range indices {
		sumTemp += at(series.Temperature, i)
		sumHumidity += at(series.Humidity, i)
		sumWind += at(series.WindSpeed, i)
		sumPrecip += at(series.Precipitation, i)
	}

	n := float64(len(indices))

	return NewMetrics(
		common.Round(sumTemp/n, 1),
		common.Round(sumHumidity/n, 1),
		common.Round(sumWind/n, 1),
		common.Round(sumPrecip/n, 1),
	), true
}
