package timewindow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 17, 12, 34, 0, 0, time.UTC)
var hour = now.Truncate(time.Hour)

func TestNewCentersOnTruncatedHour(t *testing.T) {
	m := New(now)

	assert.Equal(t, ModeSingle, m.Selection().Mode)
	assert.Equal(t, hour, m.Selection().Instant)
	assert.Equal(t, hour.Add(-15*24*time.Hour), m.Extent().Min)
	assert.Equal(t, hour.Add(15*24*time.Hour), m.Extent().Max)
}

func TestToggleMode(t *testing.T) {
	m := New(now)

	m.ToggleMode()
	sel := m.Selection()
	require.Equal(t, ModeRange, sel.Mode)
	assert.Equal(t, hour.Add(-time.Hour), sel.Start)
	assert.Equal(t, hour.Add(time.Hour), sel.End)

	m.ToggleMode()
	assert.Equal(t, Single(hour), m.Selection())
}

func TestToggleRangeCollapsesToMidpoint(t *testing.T) {
	m := NewWithSelection(now, Range(hour, hour.Add(4*time.Hour)))
	m.ToggleMode()
	assert.Equal(t, hour.Add(2*time.Hour), m.Selection().Instant)
}

func TestMoveClampsToExtent(t *testing.T) {
	m := New(now)

	m.Move(StepDay, 1)
	assert.Equal(t, hour.Add(24*time.Hour), m.Selection().Instant)

	m.Move(StepWeek, 3)
	assert.Equal(t, m.Extent().Max, m.Selection().Instant)

	m.Move(StepWeek, -10)
	assert.Equal(t, m.Extent().Min, m.Selection().Instant)
}

func TestMoveRangeKeepsWidth(t *testing.T) {
	m := NewWithSelection(now, Range(hour, hour.Add(6*time.Hour)))

	m.Move(StepWeek, 5)
	sel := m.Selection()
	assert.Equal(t, m.Extent().Max, sel.End)
	assert.Equal(t, 6*time.Hour, sel.Width())
}

func TestExpand(t *testing.T) {
	m := NewWithSelection(now, Range(hour, hour.Add(2*time.Hour)))

	require.NoError(t, m.Expand(StepHour))
	assert.Equal(t, Range(hour.Add(-time.Hour), hour.Add(3*time.Hour)), m.Selection())

	require.NoError(t, m.Expand(Step(40*24*time.Hour)))
	assert.Equal(t, Range(m.Extent().Min, m.Extent().Max), m.Selection())
}

func TestContractRejectedWhenCrossing(t *testing.T) {
	m := NewWithSelection(now, Range(hour, hour.Add(2*time.Hour)))

	// [h, h+2] contracted by 1h would be [h+1, h+1]: end <= start.
	err := m.Contract(StepHour)
	assert.ErrorIs(t, err, ErrContractTooFar)
	assert.Equal(t, Range(hour, hour.Add(2*time.Hour)), m.Selection())

	m.Set(Range(hour, hour.Add(4*time.Hour)))
	require.NoError(t, m.Contract(StepHour))
	assert.Equal(t, Range(hour.Add(time.Hour), hour.Add(3*time.Hour)), m.Selection())
}

func TestRangeOnlyOperationsInSingleMode(t *testing.T) {
	m := New(now)
	assert.ErrorIs(t, m.Expand(StepHour), ErrNotRange)
	assert.ErrorIs(t, m.Contract(StepHour), ErrNotRange)
	assert.ErrorIs(t, m.DragStart(now), ErrNotRange)
	assert.ErrorIs(t, m.DragEnd(now), ErrNotRange)
}

func TestPointerSetSnapsToHour(t *testing.T) {
	m := New(now)

	m.PointerSet(hour.Add(3*time.Hour + 31*time.Minute))
	assert.Equal(t, hour.Add(4*time.Hour), m.Selection().Instant)

	m.PointerSet(hour.Add(3*time.Hour + 29*time.Minute))
	assert.Equal(t, hour.Add(3*time.Hour), m.Selection().Instant)

	m.PointerSet(hour.Add(90 * 24 * time.Hour))
	assert.Equal(t, m.Extent().Max, m.Selection().Instant)
}

func TestPointerSetRecentersRange(t *testing.T) {
	m := NewWithSelection(now, Range(hour, hour.Add(2*time.Hour)))

	m.PointerSet(hour.Add(10*time.Hour + 10*time.Minute))
	assert.Equal(t, Range(hour.Add(9*time.Hour), hour.Add(11*time.Hour)), m.Selection())
}

func TestDragEdgesKeepOrder(t *testing.T) {
	m := NewWithSelection(now, Range(hour, hour.Add(2*time.Hour)))

	require.NoError(t, m.DragEnd(hour.Add(5*time.Hour+20*time.Minute)))
	assert.Equal(t, hour.Add(5*time.Hour), m.Selection().End)

	require.NoError(t, m.DragStart(hour.Add(9*time.Hour)))
	sel := m.Selection()
	assert.Equal(t, sel.End, sel.Start)

	require.NoError(t, m.DragEnd(hour.Add(-3*time.Hour)))
	sel = m.Selection()
	assert.False(t, sel.End.Before(sel.Start))
}

func TestAdvanceWrapsAround(t *testing.T) {
	m := New(now)
	m.Set(Single(m.Extent().Max.Add(-time.Hour)))

	m.Advance()
	assert.Equal(t, m.Extent().Max, m.Selection().Instant)

	m.Advance()
	assert.Equal(t, m.Extent().Min, m.Selection().Instant)

	m.Advance()
	assert.Equal(t, m.Extent().Min.Add(time.Hour), m.Selection().Instant)
}

func TestAdvanceRangeWraps(t *testing.T) {
	m := New(now)
	upper := m.Extent().Max
	m.Set(Range(upper.Add(-3*time.Hour), upper))

	m.Advance()
	sel := m.Selection()
	assert.Equal(t, m.Extent().Min, sel.Start)
	assert.Equal(t, 3*time.Hour, sel.Width())
}

func TestSetClampsOutOfExtent(t *testing.T) {
	m := New(now)
	m.Set(Range(hour.Add(-40*24*time.Hour), hour.Add(40*24*time.Hour)))
	assert.Equal(t, Range(m.Extent().Min, m.Extent().Max), m.Selection())
}

func TestHandleKey(t *testing.T) {
	m := New(now)

	assert.True(t, m.HandleKey(KeyEvent{Key: "ArrowRight"}))
	assert.Equal(t, hour.Add(time.Hour), m.Selection().Instant)

	assert.True(t, m.HandleKey(KeyEvent{Key: "ArrowLeft", Shift: true}))
	assert.Equal(t, hour.Add(-23*time.Hour), m.Selection().Instant)

	assert.True(t, m.HandleKey(KeyEvent{Key: "ArrowRight", Ctrl: true}))
	assert.Equal(t, hour.Add(-23*time.Hour+7*24*time.Hour), m.Selection().Instant)

	assert.False(t, m.HandleKey(KeyEvent{Key: "+"}), "expand needs range mode")
	assert.False(t, m.HandleKey(KeyEvent{Key: "x"}))

	m.Set(Single(hour))
	assert.True(t, m.HandleKey(KeyEvent{Key: "m"}))
	assert.True(t, m.HandleKey(KeyEvent{Key: "=", Shift: true}))
	assert.Equal(t, Range(hour.Add(-25*time.Hour), hour.Add(25*time.Hour)), m.Selection())

	assert.True(t, m.HandleKey(KeyEvent{Key: "-", Shift: true}))
	assert.False(t, m.HandleKey(KeyEvent{Key: "-", Shift: true}))
	assert.Equal(t, Range(hour.Add(-time.Hour), hour.Add(time.Hour)), m.Selection())
}

func TestSelectionJSON(t *testing.T) {
	raw, err := json.Marshal(Single(hour))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"single","instant":"2026-10-17T12:00:00Z"}`, string(raw))

	var back Selection
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(Single(hour)))

	raw, err = json.Marshal(Range(hour, hour.Add(time.Hour)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"range","start":"2026-10-17T12:00:00Z","end":"2026-10-17T13:00:00Z"}`, string(raw))

	assert.Error(t, json.Unmarshal([]byte(`{"mode":"loop"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"mode":"range","start":"2026-10-17T12:00:00Z"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"mode":"single"}`), &back))
}
