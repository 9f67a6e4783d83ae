package weather

import (
	"context"
	"time"
)

// Provider abstracts an hourly weather data source (e.g. Open-Meteo).
// startDate and endDate are calendar days; the returned series covers both
// days entirely.
type Provider interface {
	Name() string
	Hourly(ctx context.Context, lat, lng float64, startDate, endDate time.Time) (HourlySeries, error)
}
