package models

import "time"

type TopicProgress struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	TopicID     int64      `json:"topic_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProgramProgress summarizes a student's completion within one program.
type ProgramProgress struct {
	ProgramID       int64   `json:"program_id"`
	ProgramName     string  `json:"program_name"`
	TotalTopics     int     `json:"total_topics"`
	CompletedTopics int     `json:"completed_topics"`
	Percent         float64 `json:"percent"`
}
