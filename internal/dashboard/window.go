package dashboard

import (
	"context"
	"time"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
)

// Every window mutation below persists the new selection and, when it
// changed, refetches weather for all polygons before returning.

// TimeSelection returns the current selection and its extent.
func (d *Dashboard) TimeSelection() (timewindow.Selection, timewindow.Extent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window.Selection(), d.window.Extent()
}

// SetTimeSelection replaces the selection, clamped into the extent.
func (d *Dashboard) SetTimeSelection(ctx context.Context, sel timewindow.Selection) timewindow.Selection {
	out, _ := d.mutateWindow(ctx, func(m *timewindow.Model) error {
		m.Set(sel)
		return nil
	})
	return out
}

// HandleKey applies a keyboard shortcut and reports whether it changed the
// selection.
func (d *Dashboard) HandleKey(ctx context.Context, k timewindow.KeyEvent) (timewindow.Selection, bool) {
	changed := false
	out, _ := d.mutateWindow(ctx, func(m *timewindow.Model) error {
		changed = m.HandleKey(k)
		return nil
	})
	return out, changed
}

// ToggleMode switches between single and range selection.
func (d *Dashboard) ToggleMode(ctx context.Context) timewindow.Selection {
	out, _ := d.mutateWindow(ctx, func(m *timewindow.Model) error {
		m.ToggleMode()
		return nil
	})
	return out
}

// PointerSet handles a click or drag on the timeline at t.
func (d *Dashboard) PointerSet(ctx context.Context, t time.Time) timewindow.Selection {
	out, _ := d.mutateWindow(ctx, func(m *timewindow.Model) error {
		m.PointerSet(t)
		return nil
	})
	return out
}

// DragStart moves the start edge of a range.
func (d *Dashboard) DragStart(ctx context.Context, t time.Time) (timewindow.Selection, error) {
	return d.mutateWindow(ctx, func(m *timewindow.Model) error { return m.DragStart(t) })
}

// DragEnd moves the end edge of a range.
func (d *Dashboard) DragEnd(ctx context.Context, t time.Time) (timewindow.Selection, error) {
	return d.mutateWindow(ctx, func(m *timewindow.Model) error { return m.DragEnd(t) })
}

// Advance is one playback step.
func (d *Dashboard) Advance(ctx context.Context) timewindow.Selection {
	out, _ := d.mutateWindow(ctx, func(m *timewindow.Model) error {
		m.Advance()
		return nil
	})
	return out
}

func (d *Dashboard) mutateWindow(ctx context.Context, fn func(*timewindow.Model) error) (timewindow.Selection, error) {
	d.mu.Lock()
	before := d.window.Selection()
	err := fn(d.window)
	sel := d.window.Selection()
	changed := !sel.Equal(before)
	if changed {
		d.store.Save(store.Partial{TimeSelection: &sel})
	}
	d.mu.Unlock()

	if err != nil {
		return sel, err
	}
	if changed {
		d.Refresh(ctx)
	}
	return sel, nil
}
