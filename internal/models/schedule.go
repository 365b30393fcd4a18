package models

import (
	"time"

	"github.com/labops/labops-api/internal/timeline"
)

// Schedule is a booked time interval for a resource. StartTime is inclusive,
// EndTime exclusive, so back-to-back bookings never collide.
type Schedule struct {
	ID            string     `db:"id" json:"id"`
	ResourceID    string     `db:"resource_id" json:"resource_id"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       time.Time  `db:"end_time" json:"end_time"`
	Title         string     `db:"title" json:"title"`
	PriorityLevel int        `db:"priority_level" json:"priority_level"`
	Status        string     `db:"status" json:"status"`
	OperatorName  *string    `db:"operator_name" json:"operator_name,omitempty"`
	WorkOrderID   *string    `db:"work_order_id" json:"work_order_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	ResourceID  string
	Status      string
	WorkOrderID string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// Timeline converts the persisted row into the read-only view consumed by
// the layout and selection core.
func (s Schedule) Timeline() timeline.Schedule {
	ts := timeline.Schedule{
		ID:         s.ID,
		ResourceID: s.ResourceID,
		Start:      s.StartTime,
		End:        s.EndTime,
		Title:      s.Title,
		Priority:   timeline.NormalizePriority(s.PriorityLevel),
		Status:     timeline.Status(s.Status),
	}
	if s.OperatorName != nil {
		ts.Operator = *s.OperatorName
	}
	if s.WorkOrderID != nil {
		ts.WorkOrderID = *s.WorkOrderID
	}
	return ts
}

// ScheduleConflict describes an existing schedule blocking a new booking.
type ScheduleConflict struct {
	ScheduleID string    `json:"schedule_id"`
	ResourceID string    `json:"resource_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Title      string    `json:"title"`
}

// ScheduleConflictError is returned when a booking collides with existing
// schedules of the same resource.
type ScheduleConflictError struct {
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
