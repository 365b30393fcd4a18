package models

import "time"

// Laboratory represents a lab operated at one of the organisation's sites.
type Laboratory struct {
	ID        string    `db:"id" json:"id"`
	SiteName  string    `db:"site_name" json:"site_name"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LaboratoryFilter describes query params for listing laboratories.
type LaboratoryFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
