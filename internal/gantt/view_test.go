package gantt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops/labops-api/internal/timeline"
)

var day = time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return day.Add(9 * time.Hour)
}

func hourAt(h int) time.Time {
	return day.Add(time.Duration(h) * time.Hour)
}

type fetcherStub struct {
	mu      sync.Mutex
	rows    []ResourceSchedules
	err     error
	queries []ScheduleQuery
	block   chan struct{}
}

func (f *fetcherStub) FetchSchedules(ctx context.Context, q ScheduleQuery) ([]ResourceSchedules, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	block := f.block
	rows, err := f.rows, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func testOptions() Options {
	return Options{SpanDays: 7, HistoryDays: 0, MaxRangeDays: 7, Now: fixedNow}
}

func TestViewLoadLaysOutRows(t *testing.T) {
	fetcher := &fetcherStub{rows: []ResourceSchedules{
		{
			ResourceID: "eq-1",
			Name:       "Centrifuge A",
			Code:       "EQ-001",
			Schedules: []timeline.Schedule{
				{ID: "s1", ResourceID: "eq-1", Start: hourAt(26), End: hourAt(30), Priority: 1},
			},
		},
	}}
	v := NewView(fetcher, testOptions())

	require.NoError(t, v.Load(context.Background()))

	rows := v.Rows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Bars, 1)
	assert.InDelta(t, 26.0/168.0, rows[0].Bars[0].LeftFraction, 1e-9)
	assert.InDelta(t, 4.0/168.0, rows[0].Bars[0].WidthFraction, 1e-9)

	require.Len(t, fetcher.queries, 1)
	assert.Equal(t, day, fetcher.queries[0].Start)
	assert.Equal(t, day.AddDate(0, 0, 7), fetcher.queries[0].End)
}

func TestViewPanIssuesNewFetch(t *testing.T) {
	fetcher := &fetcherStub{}
	v := NewView(fetcher, testOptions())

	require.NoError(t, v.PanNext(context.Background()))
	require.NoError(t, v.PanPrev(context.Background()))
	require.NoError(t, v.Today(context.Background()))

	require.Len(t, fetcher.queries, 3)
	assert.Equal(t, day.AddDate(0, 0, 7), fetcher.queries[0].Start)
	assert.Equal(t, day, fetcher.queries[1].Start, "pan back returns to the anchor")
	assert.Equal(t, day, fetcher.queries[2].Start)
}

func TestViewLastRequestWins(t *testing.T) {
	fetcher := &fetcherStub{block: make(chan struct{})}
	fetcher.rows = []ResourceSchedules{{ResourceID: "stale", Name: "Stale"}}
	v := NewView(fetcher, testOptions())

	done := make(chan error, 1)
	go func() { done <- v.Load(context.Background()) }()

	// Wait for the first fetch to be issued, then supersede it.
	require.Eventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return len(fetcher.queries) == 1
	}, time.Second, time.Millisecond)

	fetcher.mu.Lock()
	fetcher.block = nil
	fetcher.rows = []ResourceSchedules{{ResourceID: "fresh", Name: "Fresh"}}
	fetcher.mu.Unlock()

	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, <-done, "cancelled fetch is silently discarded, not an error")

	rows := v.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "fresh", rows[0].ResourceID, "stale result must never overwrite the newer one")
}

func TestViewKeepsLastRowsOnFetchFailure(t *testing.T) {
	fetcher := &fetcherStub{rows: []ResourceSchedules{{ResourceID: "eq-1", Name: "Centrifuge A"}}}
	v := NewView(fetcher, testOptions())

	var observed []error
	v.OnError = func(err error) { observed = append(observed, err) }

	require.NoError(t, v.Load(context.Background()))

	fetcher.mu.Lock()
	fetcher.err = errors.New("database unavailable")
	fetcher.mu.Unlock()

	err := v.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, v.Rows(), 1, "view keeps the last successful data instead of blanking")
	require.Len(t, observed, 1)
	assert.EqualError(t, observed[0], "database unavailable")
}

func TestViewWarnsOnWideWindow(t *testing.T) {
	fetcher := &fetcherStub{}
	v := NewView(fetcher, Options{SpanDays: 14, MaxRangeDays: 7, Now: fixedNow})

	var warnings []string
	v.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	require.NoError(t, v.Load(context.Background()))
	require.Len(t, warnings, 1)
	require.Len(t, fetcher.queries, 1, "a wide window is flagged but still served")
}

func TestViewActivateBarRequiresWorkOrder(t *testing.T) {
	fetcher := &fetcherStub{rows: []ResourceSchedules{
		{
			ResourceID: "eq-1",
			Schedules: []timeline.Schedule{
				{ID: "s1", ResourceID: "eq-1", Start: hourAt(1), End: hourAt(2)},
				{ID: "s2", ResourceID: "eq-1", Start: hourAt(3), End: hourAt(4), WorkOrderID: "wo-9"},
			},
		},
	}}
	v := NewView(fetcher, testOptions())
	require.NoError(t, v.Load(context.Background()))

	var activated []timeline.Schedule
	v.OnScheduleActivated = func(s timeline.Schedule) { activated = append(activated, s) }

	v.ActivateBar("eq-1", "s1")
	assert.Empty(t, activated, "bars without a work order do not navigate")

	v.ActivateBar("eq-1", "s2")
	require.Len(t, activated, 1)
	assert.Equal(t, "wo-9", activated[0].WorkOrderID)
}

func TestViewEndToEndSelectionScenario(t *testing.T) {
	fetcher := &fetcherStub{rows: []ResourceSchedules{
		{
			ResourceID: "eq-1",
			Name:       "Critical Autoclave",
			Schedules: []timeline.Schedule{
				{ID: "s1", ResourceID: "eq-1", Start: hourAt(26), End: hourAt(30), Priority: 1},
			},
		},
	}}
	v := NewView(fetcher, testOptions())
	require.NoError(t, v.Load(context.Background()))

	var changes []*timeline.Selection
	v.OnSelectionChanged = func(s *timeline.Selection) { changes = append(changes, s) }

	v.PointerDown("eq-1", 26)
	v.PointerMove(29)
	sel, conflict := v.PointerUp("eq-1")
	assert.Nil(t, sel)
	require.NotNil(t, conflict, "overlapping the existing booking must be rejected")
	assert.Empty(t, changes)

	v.PointerDown("eq-1", 30)
	v.PointerMove(32)
	sel, conflict = v.PointerUp("eq-1")
	assert.Nil(t, conflict, "back-to-back with the existing booking is allowed")
	require.NotNil(t, sel)
	assert.Equal(t, hourAt(30), sel.Start)
	require.Len(t, changes, 1)

	// The committed selection survives switching the displayed resource.
	v.PointerDown("eq-2", 5)
	v.PointerLeave()
	require.NotNil(t, v.Selection())
	assert.Equal(t, "eq-1", v.Selection().ResourceID)

	v.ClearSelection()
	assert.Nil(t, v.Selection())
	require.Len(t, changes, 2)
	assert.Nil(t, changes[1])
}
