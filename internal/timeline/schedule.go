package timeline

import "time"

// Status enumerates the lifecycle of a booking.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Schedule is the read-only view of a booking consumed by layout and
// selection. The data source owns the records; this package only positions
// them and checks candidates against them.
type Schedule struct {
	ID          string
	ResourceID  string
	Start       time.Time
	End         time.Time
	Title       string
	Priority    int
	Status      Status
	Operator    string
	WorkOrderID string
}
