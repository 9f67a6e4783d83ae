package common

import (
	"math"
	"time"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// IsNumber reports whether v is a finite float.
func IsNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// TruncateHour drops minutes, seconds and sub-seconds from t as read on the
// wall clock of loc (UTC when nil). Zones with half-hour offsets keep their
// :30 record times.
func TruncateHour(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), 0, 0, 0, loc)
}
