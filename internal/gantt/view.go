package gantt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labops/labops-api/internal/timeline"
)

// Options tunes a View instance.
type Options struct {
	// SpanDays is the window width; pan steps move by a full span.
	SpanDays int
	// HistoryDays shifts the reset-to-today anchor back so one day of
	// elapsed schedules stays visible.
	HistoryDays int
	// MaxRangeDays flags, without rejecting, windows wider than the
	// supported display span.
	MaxRangeDays int
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Filter narrows which resources a view shows.
type Filter struct {
	ResourceIDs  []string
	LaboratoryID string
	Category     string
}

// Row is a laid-out resource row ready for rendering.
type Row struct {
	ResourceID string
	Name       string
	Code       string
	Bars       []timeline.Bar
}

// View orchestrates one scheduling chart: it owns the visible window, loads
// rows from the fetch collaborator, and wires the drag-selection controller
// to pointer events. Loads follow last-request-wins: issuing a fetch cancels
// the previous in-flight one, and a superseded result can never touch view
// state. Hooks run synchronously on the calling goroutine and must not call
// back into the view.
type View struct {
	mu         sync.Mutex
	opts       Options
	fetcher    ScheduleFetcher
	window     timeline.TimeWindow
	filter     Filter
	selection  *timeline.SelectionController
	rows       []Row
	byResource map[string][]timeline.Schedule
	generation uint64
	cancel     context.CancelFunc

	// OnSelectionChanged re-emits committed-selection lifecycle events.
	OnSelectionChanged func(*timeline.Selection)
	// OnScheduleActivated fires when a bar linked to a work order is
	// activated; navigation is the caller's concern.
	OnScheduleActivated func(timeline.Schedule)
	// OnWarning surfaces non-fatal notices such as an over-wide window.
	OnWarning func(string)
	// OnError observes failed loads; the previous rows stay displayed.
	OnError func(error)
}

// NewView builds a view anchored at today.
func NewView(fetcher ScheduleFetcher, opts Options) *View {
	if opts.SpanDays <= 0 {
		opts.SpanDays = 7
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	window := timeline.SpanWindow(opts.Now(), opts.HistoryDays, opts.SpanDays)
	v := &View{
		opts:       opts,
		fetcher:    fetcher,
		window:     window,
		selection:  timeline.NewSelectionController(window),
		byResource: map[string][]timeline.Schedule{},
	}
	v.selection.OnChange = func(s *timeline.Selection) {
		if v.OnSelectionChanged != nil {
			v.OnSelectionChanged(s)
		}
	}
	return v
}

// Window returns the currently visible window.
func (v *View) Window() timeline.TimeWindow {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.window
}

// SetFilter replaces the resource filter; the next Load uses it.
func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// SetWindow jumps to an explicit window, as from a date-picker edit.
func (v *View) SetWindow(ctx context.Context, window timeline.TimeWindow) error {
	v.swapWindow(window)
	return v.Load(ctx)
}

// PanPrev shifts the window one span back and reloads.
func (v *View) PanPrev(ctx context.Context) error {
	v.swapWindow(v.Window().Pan(-v.opts.SpanDays))
	return v.Load(ctx)
}

// PanNext shifts the window one span forward and reloads.
func (v *View) PanNext(ctx context.Context) error {
	v.swapWindow(v.Window().Pan(v.opts.SpanDays))
	return v.Load(ctx)
}

// Today resets the window to the configured anchor around now and reloads.
func (v *View) Today(ctx context.Context) error {
	v.swapWindow(timeline.SpanWindow(v.opts.Now(), v.opts.HistoryDays, v.opts.SpanDays))
	return v.Load(ctx)
}

func (v *View) swapWindow(window timeline.TimeWindow) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.window = window
	v.selection.SetWindow(window)
}

// Load fetches rows for the current window and filter. A still-running
// earlier fetch is cancelled and its result discarded. On failure the view
// keeps the last successfully loaded rows; cancellation is not an error.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.generation++
	gen := v.generation
	window := v.window
	query := ScheduleQuery{
		Start:        window.Start,
		End:          window.End,
		ResourceIDs:  v.filter.ResourceIDs,
		LaboratoryID: v.filter.LaboratoryID,
		Category:     v.filter.Category,
	}
	v.mu.Unlock()

	if days := window.TotalHours() / 24; int(days) > v.opts.MaxRangeDays && v.OnWarning != nil {
		v.OnWarning(fmt.Sprintf("window spans %.0f days, display supports %d", days, v.opts.MaxRangeDays))
	}

	fetched, err := v.fetcher.FetchSchedules(fetchCtx, query)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		// Superseded by a newer request; discard silently.
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if v.OnError != nil {
			v.OnError(err)
		}
		return err
	}

	rows := make([]Row, 0, len(fetched))
	byResource := make(map[string][]timeline.Schedule, len(fetched))
	for _, rs := range fetched {
		rows = append(rows, Row{
			ResourceID: rs.ResourceID,
			Name:       rs.Name,
			Code:       rs.Code,
			Bars:       timeline.Layout(window, rs.Schedules),
		})
		byResource[rs.ResourceID] = rs.Schedules
	}
	v.rows = rows
	v.byResource = byResource
	return nil
}

// Rows returns the laid-out rows from the last successful load.
func (v *View) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// ActivateBar handles a user interacting with an existing bar. Only bars
// linked to a work order emit the activation event.
func (v *View) ActivateBar(resourceID, scheduleID string) {
	v.mu.Lock()
	var found *timeline.Schedule
	for _, s := range v.byResource[resourceID] {
		if s.ID == scheduleID {
			match := s
			found = &match
			break
		}
	}
	v.mu.Unlock()

	if found == nil || found.WorkOrderID == "" {
		return
	}
	if v.OnScheduleActivated != nil {
		v.OnScheduleActivated(*found)
	}
}

// PointerDown begins a drag gesture over a resource's hour grid. Gestures
// operate purely on already-loaded data and are never interrupted by
// in-flight fetches.
func (v *View) PointerDown(resourceID string, hour int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.PointerDown(resourceID, hour)
}

// PointerMove extends the in-progress gesture.
func (v *View) PointerMove(hour int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.PointerMove(hour)
}

// PointerLeave abandons the in-progress gesture.
func (v *View) PointerLeave() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.PointerLeave()
}

// PointerUp finishes the gesture against the active resource's loaded
// schedules. A conflict is feedback, not an error.
func (v *View) PointerUp(resourceID string) (*timeline.Selection, *timeline.Conflict) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.PointerUp(v.byResource[resourceID])
}

// Selection returns the surviving committed selection, if any.
func (v *View) Selection() *timeline.Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.Committed()
}

// ClearSelection drops the committed selection.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Clear()
}
