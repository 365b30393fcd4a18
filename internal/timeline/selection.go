package timeline

import "time"

// SelectionState tracks the pointer gesture.
type SelectionState int

const (
	// StateIdle means no gesture is in progress.
	StateIdle SelectionState = iota
	// StateSelecting means a pointer-down has anchored a candidate range.
	StateSelecting
)

// Selection is a committed drag range for one resource.
type Selection struct {
	ResourceID string
	Start      time.Time
	End        time.Time
}

// Conflict carries the schedules that blocked a commit. It is feedback
// state, not an error: the user simply retries with different bounds.
type Conflict struct {
	ResourceID string
	Start      time.Time
	End        time.Time
	Blocking   []Schedule
}

// SelectionController drives the click-and-drag interval selection over an
// hour grid. All methods run on the caller's event loop; the controller
// holds no locks.
type SelectionController struct {
	window    TimeWindow
	state     SelectionState
	resource  string
	anchor    int
	cursor    int
	committed *Selection

	// OnChange fires whenever the committed selection is set or cleared.
	OnChange func(*Selection)
}

// NewSelectionController builds an idle controller over the given window.
func NewSelectionController(window TimeWindow) *SelectionController {
	return &SelectionController{window: window}
}

// State reports the current gesture state.
func (c *SelectionController) State() SelectionState {
	return c.state
}

// SetWindow swaps the visible window. Hour indices of an in-progress drag
// would be meaningless against the new window, so the gesture is abandoned.
// The committed selection holds absolute times and survives the pan.
func (c *SelectionController) SetWindow(window TimeWindow) {
	c.window = window
	c.state = StateIdle
}

// PointerDown anchors a candidate range at the given hour cell.
func (c *SelectionController) PointerDown(resourceID string, hour int) {
	c.state = StateSelecting
	c.resource = resourceID
	c.anchor = hour
	c.cursor = hour
}

// PointerMove extends the candidate range while a gesture is in progress.
func (c *SelectionController) PointerMove(hour int) {
	if c.state != StateSelecting {
		return
	}
	c.cursor = hour
}

// PointerLeave abandons an in-progress gesture with no side effect.
func (c *SelectionController) PointerLeave() {
	c.state = StateIdle
}

// CandidateRange returns the half-open hour range [start, end) of the
// current gesture. The +1 makes the last hovered cell inclusive, so a
// single-cell click selects one full hour.
func (c *SelectionController) CandidateRange() (startHour, endHour int, ok bool) {
	if c.state != StateSelecting {
		return 0, 0, false
	}
	return min(c.anchor, c.cursor), max(c.anchor, c.cursor) + 1, true
}

// PointerUp finishes the gesture. The candidate is checked against every
// existing schedule of the gesture's resource; any overlap rejects the whole
// commit and the previously committed selection stays untouched. On success
// the candidate is promoted to absolute times and becomes the committed
// selection.
func (c *SelectionController) PointerUp(existing []Schedule) (*Selection, *Conflict) {
	startHour, endHour, ok := c.CandidateRange()
	c.state = StateIdle
	if !ok {
		return nil, nil
	}

	start := c.window.HourIndexToTime(startHour)
	end := c.window.HourIndexToTime(endHour)

	var blocking []Schedule
	for _, s := range existing {
		if s.ResourceID != "" && s.ResourceID != c.resource {
			continue
		}
		if Overlaps(start, end, s.Start, s.End) {
			blocking = append(blocking, s)
		}
	}
	if len(blocking) > 0 {
		return nil, &Conflict{ResourceID: c.resource, Start: start, End: end, Blocking: blocking}
	}

	sel := &Selection{ResourceID: c.resource, Start: start, End: end}
	c.committed = sel
	if c.OnChange != nil {
		c.OnChange(sel)
	}
	return sel, nil
}

// Committed returns the surviving selection, which stays keyed to its
// resource even when the caller switches the displayed tab.
func (c *SelectionController) Committed() *Selection {
	return c.committed
}

// Clear drops the committed selection. Always legal.
func (c *SelectionController) Clear() {
	if c.committed == nil {
		return
	}
	c.committed = nil
	if c.OnChange != nil {
		c.OnChange(nil)
	}
}
