package models

import "time"

const (
	SessionTypeWeekday = "weekday"
	SessionTypeWeekend = "weekend"
)

// ClassSession is a recurring weekly time slot with regular and demo seat
// capacity. Available counts are authoritative server side: they are only
// mutated through enrollment transactions and capacity edits.
type ClassSession struct {
	ID                int64     `json:"id"`
	LocationID        int64     `json:"location_id"`
	Weekday           string    `json:"weekday"`
	StartTime         string    `json:"start_time"`
	EndTime           string    `json:"end_time"`
	Type              string    `json:"type"`
	TotalCapacity     int       `json:"total_capacity"`
	AvailableCapacity int       `json:"available_capacity"`
	DemoCapacity      int       `json:"demo_capacity"`
	AvailableDemo     int       `json:"available_demo"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Schedule is a dated instance combining a location, a class session and
// exactly one of a plan or a program, with capacity of its own.
type Schedule struct {
	ID                int64     `json:"id"`
	Date              time.Time `json:"date"`
	LocationID        int64     `json:"location_id"`
	ClassSessionID    int64     `json:"class_session_id"`
	PlanID            *int64    `json:"plan_id,omitempty"`
	ProgramID         *int64    `json:"program_id,omitempty"`
	TotalCapacity     int       `json:"total_capacity"`
	AvailableCapacity int       `json:"available_capacity"`
	DemoCapacity      int       `json:"demo_capacity"`
	AvailableDemo     int       `json:"available_demo"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EnrolledCount is the number of seats currently held.
func (s *Schedule) EnrolledCount() int {
	return s.TotalCapacity - s.AvailableCapacity
}
