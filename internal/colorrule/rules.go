// Package colorrule maps weather values to display colors through ordered
// half-open threshold intervals.
package colorrule

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultColor is used when no rule or condition matches.
const DefaultColor = "#9ca3af"

var validate = validator.New()

// Condition matches values in [Min, Max).
// Min < Max is expected but not enforced.
type Condition struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Color string  `json:"color" validate:"required"`
	Label string  `json:"label"`
}

// Matches reports whether Min <= v < Max.
func (c Condition) Matches(v float64) bool {
	return c.Min <= v && v < c.Max
}

// Rule is an ordered list of conditions for one data source.
// Conditions are scanned in order and the first match wins.
type Rule struct {
	ID         string             `json:"id"`
	DataSource weather.DataSource `json:"dataSource" validate:"required"`
	Conditions []Condition        `json:"conditions" validate:"dive"`
}

// Validate checks the data source and condition colors.
func (r Rule) Validate() error {
	if !r.DataSource.Valid() {
		return fmt.Errorf("rule %q: unknown data source %q", r.ID, r.DataSource)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("rule %q: %w", r.ID, err)
	}
	return nil
}

// ValidateRules validates every rule and assigns ids to rules without one.
func ValidateRules(rules []Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	var errs []error
	for _, r := range rules {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, r)
	}
	return out, errors.Join(errs...)
}

// ResolveColor returns the color of the first condition matching value in
// the first rule for source. DefaultColor is returned when nothing matches
// or value is NaN or infinite.
func ResolveColor(rules []Rule, source weather.DataSource, value float64) string {
	if !common.IsNumber(value) {
		return DefaultColor
	}

	for _, r := range rules {
		if r.DataSource != source {
			continue
		}
		for _, c := range r.Conditions {
			if c.Matches(value) {
				return c.Color
			}
		}
		return DefaultColor
	}
	return DefaultColor
}

// ResolveMetrics resolves the color for source from m. A metric that has
// not been fetched yet resolves to DefaultColor.
func ResolveMetrics(rules []Rule, source weather.DataSource, m *weather.Metrics) string {
	if m == nil {
		return DefaultColor
	}
	v, ok := m.Value(source)
	if !ok {
		return DefaultColor
	}
	return ResolveColor(rules, source, v)
}
