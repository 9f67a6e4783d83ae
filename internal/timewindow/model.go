package timewindow

import (
	"errors"
	"time"
)

const (
	// ExtentHalfWidth bounds every selection to now ± 15 days.
	ExtentHalfWidth = 15 * 24 * time.Hour

	// PlaybackStep is how far Advance moves the selection.
	PlaybackStep = time.Hour

	// toggleHalfWidth is the half width of the range a single instant expands to.
	toggleHalfWidth = time.Hour
)

// Step is the unit of a keyboard move, expand or contract.
type Step time.Duration

const (
	StepHour Step = Step(time.Hour)
	StepDay  Step = Step(24 * time.Hour)
	StepWeek Step = Step(7 * 24 * time.Hour)
)

var (
	// ErrNotRange is returned by range-only operations in single mode.
	ErrNotRange = errors.New("selection is not a range")
	// ErrContractTooFar is returned when contracting would make end <= start.
	ErrContractTooFar = errors.New("contraction would collapse the range")
)

// Extent is the fixed window every selection is clamped to.
type Extent struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// Clamp forces t into the extent.
func (e Extent) Clamp(t time.Time) time.Time {
	if t.Before(e.Min) {
		return e.Min
	}
	if t.After(e.Max) {
		return e.Max
	}
	return t
}

// Contains reports whether t lies within the extent.
func (e Extent) Contains(t time.Time) bool {
	return !t.Before(e.Min) && !t.After(e.Max)
}

// Model is the time selection state machine. It is not safe for concurrent
// use; the dashboard serializes access.
type Model struct {
	sel    Selection
	extent Extent
}

// New creates a model whose extent is centered on now (truncated to the hour)
// and whose selection is that hour.
func New(now time.Time) *Model {
	center := now.UTC().Truncate(time.Hour)
	m := &Model{
		extent: Extent{
			Min: center.Add(-ExtentHalfWidth),
			Max: center.Add(ExtentHalfWidth),
		},
	}
	m.sel = Single(center)
	return m
}

// NewWithSelection creates a model around now and applies sel, clamped.
func NewWithSelection(now time.Time, sel Selection) *Model {
	m := New(now)
	m.Set(sel)
	return m
}

// Selection returns the current selection.
func (m *Model) Selection() Selection {
	return m.sel
}

// Extent returns the fixed bounds.
func (m *Model) Extent() Extent {
	return m.extent
}

// Set replaces the selection, clamping it into the extent.
func (m *Model) Set(sel Selection) {
	switch sel.Mode {
	case ModeRange:
		m.sel = m.clampRange(sel.Start, sel.End)
	default:
		m.sel = Single(m.extent.Clamp(sel.Instant))
	}
}

// ToggleMode switches single→range as [instant-1h, instant+1h] and
// range→single as the range midpoint.
func (m *Model) ToggleMode() {
	if m.sel.Mode == ModeRange {
		mid := m.sel.Start.Add(m.sel.End.Sub(m.sel.Start) / 2)
		m.sel = Single(m.extent.Clamp(mid))
		return
	}

	i := m.sel.Instant
	m.sel = Range(
		m.extent.Clamp(i.Add(-toggleHalfWidth)),
		m.extent.Clamp(i.Add(toggleHalfWidth)),
	)
}

// Move shifts the selection by dir steps (negative moves back in time).
// A range keeps its width when it hits the extent.
func (m *Model) Move(step Step, dir int) {
	d := time.Duration(step) * time.Duration(dir)
	if m.sel.Mode == ModeRange {
		m.sel = m.shiftRange(m.sel.Start, m.sel.End, d)
		return
	}
	m.sel = Single(m.extent.Clamp(m.sel.Instant.Add(d)))
}

// Expand widens a range symmetrically by step on each side.
func (m *Model) Expand(step Step) error {
	if m.sel.Mode != ModeRange {
		return ErrNotRange
	}
	d := time.Duration(step)
	m.sel = m.clampRange(m.sel.Start.Add(-d), m.sel.End.Add(d))
	return nil
}

// Contract narrows a range symmetrically by step on each side. It is
// rejected, leaving the range unchanged, when the result would have
// end <= start.
func (m *Model) Contract(step Step) error {
	if m.sel.Mode != ModeRange {
		return ErrNotRange
	}
	d := time.Duration(step)
	start, end := m.sel.Start.Add(d), m.sel.End.Add(-d)
	if !end.After(start) {
		return ErrContractTooFar
	}
	m.sel = Range(start, end)
	return nil
}

// PointerSet handles a click at t: single mode jumps to the snapped hour,
// range mode recenters the range there keeping its width.
func (m *Model) PointerSet(t time.Time) {
	t = Snap(t)
	if m.sel.Mode == ModeRange {
		half := m.sel.End.Sub(m.sel.Start) / 2
		start := t.Add(-half)
		m.sel = m.shiftRange(start, start.Add(m.sel.End.Sub(m.sel.Start)), 0)
		return
	}
	m.sel = Single(m.extent.Clamp(t))
}

// DragStart moves the range start to the snapped t, never past the end.
func (m *Model) DragStart(t time.Time) error {
	if m.sel.Mode != ModeRange {
		return ErrNotRange
	}
	start := m.extent.Clamp(Snap(t))
	if start.After(m.sel.End) {
		start = m.sel.End
	}
	m.sel = Range(start, m.sel.End)
	return nil
}

// DragEnd moves the range end to the snapped t, never before the start.
func (m *Model) DragEnd(t time.Time) error {
	if m.sel.Mode != ModeRange {
		return ErrNotRange
	}
	end := m.extent.Clamp(Snap(t))
	if end.Before(m.sel.Start) {
		end = m.sel.Start
	}
	m.sel = Range(m.sel.Start, end)
	return nil
}

// Advance moves the selection forward by PlaybackStep. Past the upper bound
// it wraps to the lower bound.
func (m *Model) Advance() {
	if m.sel.Mode == ModeRange {
		width := m.sel.End.Sub(m.sel.Start)
		end := m.sel.End.Add(PlaybackStep)
		if end.After(m.extent.Max) {
			m.sel = m.clampRange(m.extent.Min, m.extent.Min.Add(width))
			return
		}
		m.sel = Range(m.sel.Start.Add(PlaybackStep), end)
		return
	}

	next := m.sel.Instant.Add(PlaybackStep)
	if next.After(m.extent.Max) {
		next = m.extent.Min
	}
	m.sel = Single(next)
}

// Snap rounds t to the nearest hour boundary.
func Snap(t time.Time) time.Time {
	return t.UTC().Round(time.Hour)
}

func (m *Model) clampRange(start, end time.Time) Selection {
	if end.Before(start) {
		start, end = end, start
	}
	return Range(m.extent.Clamp(start), m.extent.Clamp(end))
}

// shiftRange moves [start, end] by d and slides it back inside the extent
// without changing its width unless it is wider than the extent.
func (m *Model) shiftRange(start, end time.Time, d time.Duration) Selection {
	start, end = start.Add(d), end.Add(d)
	if start.Before(m.extent.Min) {
		end = end.Add(m.extent.Min.Sub(start))
		start = m.extent.Min
	}
	if end.After(m.extent.Max) {
		start = start.Add(-end.Sub(m.extent.Max))
		end = m.extent.Max
	}
	return m.clampRange(start, end)
}
