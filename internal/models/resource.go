package models

import "time"

// ResourceCategory distinguishes the two schedulable resource kinds.
type ResourceCategory string

const (
	CategoryEquipment ResourceCategory = "equipment"
	CategoryPersonnel ResourceCategory = "personnel"
)

// Resource is a schedulable unit: a piece of equipment or a staff member.
// Critical resources additionally appear in the interactive scheduler.
type Resource struct {
	ID           string           `db:"id" json:"id"`
	LaboratoryID string           `db:"laboratory_id" json:"laboratory_id"`
	Category     ResourceCategory `db:"category" json:"category"`
	Name         string           `db:"name" json:"name"`
	Code         string           `db:"code" json:"code"`
	Critical     bool             `db:"critical" json:"critical"`
	Active       bool             `db:"active" json:"active"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// ResourceWithSchedules is one chart row as loaded from storage: a resource
// and its bookings inside a queried range.
type ResourceWithSchedules struct {
	ResourceID string     `json:"resource_id"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Schedules  []Schedule `json:"schedules"`
}

// ResourceFilter describes query params for listing resources.
type ResourceFilter struct {
	LaboratoryID string
	Category     string
	Critical     *bool
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
