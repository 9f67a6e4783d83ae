package timewindow

// KeyEvent is a key press forwarded by the UI.
type KeyEvent struct {
	Key   string `json:"key" validate:"required"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
}

func (k KeyEvent) moveStep() Step {
	switch {
	case k.Ctrl || k.Meta:
		return StepWeek
	case k.Shift:
		return StepDay
	default:
		return StepHour
	}
}

func (k KeyEvent) resizeStep() Step {
	if k.Shift {
		return StepDay
	}
	return StepHour
}

// HandleKey applies a keyboard shortcut and reports whether the selection
// changed.
//
//	ArrowLeft/ArrowRight  move by an hour (shift: day, ctrl/meta: week)
//	+ or =                expand the range (shift: by a day)
//	- or _                contract the range (shift: by a day)
//	m                     toggle single/range
func (m *Model) HandleKey(k KeyEvent) bool {
	before := m.sel

	switch k.Key {
	case "ArrowLeft":
		m.Move(k.moveStep(), -1)
	case "ArrowRight":
		m.Move(k.moveStep(), 1)
	case "+", "=":
		if err := m.Expand(k.resizeStep()); err != nil {
			return false
		}
	case "-", "_":
		if err := m.Contract(k.resizeStep()); err != nil {
			return false
		}
	case "m", "M":
		m.ToggleMode()
	default:
		return false
	}

	return !m.sel.Equal(before)
}
