package weather

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Plausible ranges used when real data is unavailable.
const (
	fallbackTempMin, fallbackTempMax         = 15.0, 35.0
	fallbackHumidityMin, fallbackHumidityMax = 40.0, 80.0
	fallbackWindMin, fallbackWindMax         = 0.0, 30.0
	fallbackPrecipMin, fallbackPrecipMax     = 0.0, 10.0
)

// Service resolves weather metrics for a coordinate and time window.
// It never fails: when the provider errors or no hourly record matches,
// synthetic metrics in plausible ranges are returned instead.
type Service struct {
	provider Provider

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a new Service backed by provider.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithSeed makes fallback values reproducible.
func (s *Service) WithSeed(seed uint64) *Service {
	s.mu.Lock()
	s.rng = rand.New(rand.NewPCG(seed, seed))
	s.mu.Unlock()
	return s
}

// FetchWeatherData returns averaged metrics at (lat, lng) over [start, end].
// start == end selects the single hourly record for that hour.
func (s *Service) FetchWeatherData(ctx context.Context, lat, lng float64, start, end time.Time) Metrics {
	m, ok := s.fetch(ctx, lat, lng, start, end)
	if !ok {
		return s.Fallback()
	}
	return m
}

func (s *Service) fetch(ctx context.Context, lat, lng float64, start, end time.Time) (Metrics, bool) {
	if s.provider == nil {
		log.Printf("WARN: no weather provider configured; using fallback data")
		return Metrics{}, false
	}

	series, err := s.provider.Hourly(ctx, lat, lng, start, end)
	if err != nil {
		log.Printf("WARN: provider %s fetch failed for %.4f,%.4f: %v; using fallback data", s.provider.Name(), lat, lng, err)
		return Metrics{}, false
	}

	indices := SelectIndices(series, start, end)
	m, ok := AverageReadings(series, indices)
	if !ok {
		log.Printf("WARN: no hourly records between %s and %s for %.4f,%.4f; using fallback data",
			start.Format(time.RFC3339), end.Format(time.RFC3339), lat, lng)
		return Metrics{}, false
	}
	return m, true
}

// Fallback synthesizes metrics within plausible physical ranges.
func (s *Service) Fallback() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return NewMetrics(
		s.between(fallbackTempMin, fallbackTempMax),
		s.between(fallbackHumidityMin, fallbackHumidityMax),
		s.between(fallbackWindMin, fallbackWindMax),
		s.between(fallbackPrecipMin, fallbackPrecipMax),
	)
}

func (s *Service) between(lo, hi float64) float64 {
	return common.Round(lo+s.rng.Float64()*(hi-lo), 1)
}
