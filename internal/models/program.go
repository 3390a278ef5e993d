package models

import "time"

type Program struct {
	ID                int64     `json:"id"`
	OfferingID        int64     `json:"offering_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"`
	EstimatedDuration int       `json:"estimated_duration"`
	VideoURL          *string   `json:"video_url"`
	ImageURL          *string   `json:"image_url"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProgramDetail includes the ordered module tree.
type ProgramDetail struct {
	Program
	Modules []ModuleDetail `json:"modules"`
}

type Module struct {
	ID                int64     `json:"id"`
	ProgramID         int64     `json:"program_id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	EstimatedDuration int       `json:"estimated_duration"`
	SortOrder         int       `json:"sort_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ModuleDetail struct {
	Module
	Topics []Topic `json:"topics"`
}

type Topic struct {
	ID                int64     `json:"id"`
	ModuleID          int64     `json:"module_id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	EstimatedDuration int       `json:"estimated_duration"`
	SortOrder         int       `json:"sort_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
