package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleCellClickCommitsOneHour(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerDown("eq-1", 3)
	sel, conflict := c.PointerUp(nil)

	require.Nil(t, conflict)
	require.NotNil(t, sel)
	assert.Equal(t, at(3), sel.Start)
	assert.Equal(t, at(4), sel.End, "a click without movement selects one full hour, never zero")
	assert.Equal(t, StateIdle, c.State())
}

func TestDragNormalizesDirection(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerDown("eq-1", 9)
	c.PointerMove(5)
	sel, conflict := c.PointerUp(nil)

	require.Nil(t, conflict)
	require.NotNil(t, sel)
	assert.Equal(t, at(5), sel.Start)
	assert.Equal(t, at(10), sel.End, "dragging backwards still yields [min, max+1)")
}

func TestPointerMoveIgnoredWhenIdle(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerMove(12)
	_, _, ok := c.CandidateRange()
	assert.False(t, ok)

	sel, conflict := c.PointerUp(nil)
	assert.Nil(t, sel)
	assert.Nil(t, conflict)
}

func TestPointerLeaveAbandonsGesture(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerDown("eq-1", 3)
	c.PointerMove(6)
	c.PointerLeave()

	assert.Equal(t, StateIdle, c.State())
	sel, conflict := c.PointerUp(nil)
	assert.Nil(t, sel, "abandoned gesture has no side effect")
	assert.Nil(t, conflict)
	assert.Nil(t, c.Committed())
}

func TestConflictLeavesCommittedSelectionUnchanged(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerDown("eq-1", 50)
	first, conflict := c.PointerUp(nil)
	require.Nil(t, conflict)
	require.NotNil(t, first)

	existing := []Schedule{{ID: "s1", ResourceID: "eq-1", Start: at(10), End: at(14)}}
	c.PointerDown("eq-1", 11)
	c.PointerMove(12)
	sel, conflict := c.PointerUp(existing)

	assert.Nil(t, sel)
	require.NotNil(t, conflict)
	require.Len(t, conflict.Blocking, 1)
	assert.Equal(t, "s1", conflict.Blocking[0].ID)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, first, c.Committed(), "rejected gesture must not disturb the committed selection")
}

func TestCommitIgnoresOtherResources(t *testing.T) {
	c := NewSelectionController(weekWindow())

	existing := []Schedule{{ID: "s1", ResourceID: "eq-2", Start: at(10), End: at(14)}}
	c.PointerDown("eq-1", 11)
	sel, conflict := c.PointerUp(existing)

	assert.Nil(t, conflict, "another resource's schedule is not a conflict")
	require.NotNil(t, sel)
	assert.Equal(t, "eq-1", sel.ResourceID)
}

func TestCommittedSelectionSurvivesTabSwitch(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerDown("eq-1", 8)
	sel, _ := c.PointerUp(nil)
	require.NotNil(t, sel)

	// Starting and abandoning a gesture on another resource keeps the
	// committed selection keyed to eq-1.
	c.PointerDown("eq-2", 20)
	c.PointerLeave()

	require.NotNil(t, c.Committed())
	assert.Equal(t, "eq-1", c.Committed().ResourceID)
}

func TestOnChangeNotifications(t *testing.T) {
	c := NewSelectionController(weekWindow())

	var events []*Selection
	c.OnChange = func(s *Selection) { events = append(events, s) }

	c.PointerDown("eq-1", 2)
	c.PointerUp(nil)
	require.Len(t, events, 1)
	assert.Equal(t, at(2), events[0].Start)

	c.Clear()
	require.Len(t, events, 2)
	assert.Nil(t, events[1])

	c.Clear()
	assert.Len(t, events, 2, "clearing an empty selection emits nothing")
}

func TestSetWindowAbandonsGestureButKeepsCommitted(t *testing.T) {
	c := NewSelectionController(weekWindow())

	c.PointerDown("eq-1", 4)
	sel, _ := c.PointerUp(nil)
	require.NotNil(t, sel)

	c.PointerDown("eq-1", 40)
	c.SetWindow(weekWindow().Pan(7))

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, sel, c.Committed())
}

func TestBackToBackSchedulingScenario(t *testing.T) {
	// 7-day window at D, existing booking [D+1d 02:00, D+1d 06:00), i.e.
	// hours [26, 30).
	c := NewSelectionController(weekWindow())
	existing := []Schedule{{ID: "s1", ResourceID: "eq-1", Start: at(26), End: at(30), Priority: 1}}

	c.PointerDown("eq-1", 26)
	c.PointerMove(29)
	sel, conflict := c.PointerUp(existing)
	assert.Nil(t, sel)
	require.NotNil(t, conflict, "drag 26..29 covers [26,30) and must be rejected")

	c.PointerDown("eq-1", 30)
	c.PointerMove(32)
	sel, conflict = c.PointerUp(existing)
	assert.Nil(t, conflict, "touching boundary at hour 30 is not an overlap")
	require.NotNil(t, sel)
	assert.Equal(t, at(30), sel.Start)
	assert.Equal(t, at(33), sel.End)
}
