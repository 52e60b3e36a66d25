package models

import "time"

// JobStatus represents the lifecycle state of a job
type JobStatus string

const (
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
)

// Job represents a piece of work performed for a client
type Job struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      JobStatus `json:"status"`
	Rate        float64   `json:"rate"`
	RateType    string    `json:"rate_type"` // hourly or fixed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
