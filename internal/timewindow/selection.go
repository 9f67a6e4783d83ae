// Package timewindow models the dashboard's time selection: either a single
// instant or a [start, end] range, always kept inside a fixed extent around
// the moment the model was created.
package timewindow

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Mode tags a Selection.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeRange  Mode = "range"
)

// Selection is a tagged union: Instant is meaningful in single mode,
// Start/End in range mode.
type Selection struct {
	Mode    Mode
	Instant time.Time
	Start   time.Time
	End     time.Time
}

// Single builds a single-instant selection.
func Single(t time.Time) Selection {
	return Selection{Mode: ModeSingle, Instant: t.UTC()}
}

// Range builds a range selection. Bounds are swapped when end precedes start.
func Range(start, end time.Time) Selection {
	if end.Before(start) {
		start, end = end, start
	}
	return Selection{Mode: ModeRange, Start: start.UTC(), End: end.UTC()}
}

// Window returns the query bounds. Single mode yields start == end.
func (s Selection) Window() (time.Time, time.Time) {
	if s.Mode == ModeRange {
		return s.Start, s.End
	}
	return s.Instant, s.Instant
}

// Reference is the instant used to label exports: the instant itself in
// single mode, the range start otherwise.
func (s Selection) Reference() time.Time {
	start, _ := s.Window()
	return start
}

// Width is zero in single mode.
func (s Selection) Width() time.Duration {
	start, end := s.Window()
	return end.Sub(start)
}

// Equal compares mode and the bounds relevant to that mode.
func (s Selection) Equal(o Selection) bool {
	if s.Mode != o.Mode {
		return false
	}
	if s.Mode == ModeRange {
		return s.Start.Equal(o.Start) && s.End.Equal(o.End)
	}
	return s.Instant.Equal(o.Instant)
}

func (s Selection) String() string {
	if s.Mode == ModeRange {
		return fmt.Sprintf("range(%s, %s)", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
	}
	return fmt.Sprintf("single(%s)", s.Instant.Format(time.RFC3339))
}

type selectionJSON struct {
	Mode    Mode       `json:"mode"`
	Instant *time.Time `json:"instant,omitempty"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
}

// MarshalJSON writes {"mode":"single","instant":…} or {"mode":"range","start":…,"end":…}.
func (s Selection) MarshalJSON() ([]byte, error) {
	out := selectionJSON{Mode: s.Mode}
	if s.Mode == ModeRange {
		out.Start, out.End = &s.Start, &s.End
	} else {
		out.Mode = ModeSingle
		out.Instant = &s.Instant
	}
	return json.Marshal(out)
}

// UnmarshalJSON rejects unknown modes and missing bounds.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var in selectionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Mode {
	case ModeSingle:
		if in.Instant == nil {
			return errors.New("single selection requires instant")
		}
		*s = Single(*in.Instant)
	case ModeRange:
		if in.Start == nil || in.End == nil {
			return errors.New("range selection requires start and end")
		}
		*s = Range(*in.Start, *in.End)
	default:
		return fmt.Errorf("unknown selection mode %q", in.Mode)
	}
	return nil
}
