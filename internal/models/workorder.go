package models

import "time"

// WorkOrderStatus enumerates the work order lifecycle.
type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "open"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderClosed     WorkOrderStatus = "closed"
)

// WorkOrder is a unit of laboratory work that schedules may link to.
type WorkOrder struct {
	ID           string          `db:"id" json:"id"`
	LaboratoryID string          `db:"laboratory_id" json:"laboratory_id"`
	Code         string          `db:"code" json:"code"`
	Title        string          `db:"title" json:"title"`
	Status       WorkOrderStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// WorkOrderFilter describes query params for listing work orders.
type WorkOrderFilter struct {
	LaboratoryID string
	Status       string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
