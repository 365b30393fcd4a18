package gantt

import (
	"context"
	"time"

	"github.com/labops/labops-api/internal/timeline"
)

// ScheduleQuery describes one fetch of schedule rows for a visible window.
type ScheduleQuery struct {
	Start        time.Time
	End          time.Time
	ResourceIDs  []string
	LaboratoryID string
	Category     string
}

// ResourceSchedules is one fetched row: a resource and its bookings inside
// the queried range.
type ResourceSchedules struct {
	ResourceID string
	Name       string
	Code       string
	Schedules  []timeline.Schedule
}

// ScheduleFetcher is the external data collaborator. Implementations must
// honor context cancellation: the view cancels superseded fetches at issue
// time.
type ScheduleFetcher interface {
	FetchSchedules(ctx context.Context, q ScheduleQuery) ([]ResourceSchedules, error)
}

// FetcherFunc adapts a function to the ScheduleFetcher interface.
type FetcherFunc func(ctx context.Context, q ScheduleQuery) ([]ResourceSchedules, error)

// FetchSchedules implements ScheduleFetcher.
func (f FetcherFunc) FetchSchedules(ctx context.Context, q ScheduleQuery) ([]ResourceSchedules, error) {
	return f(ctx, q)
}
