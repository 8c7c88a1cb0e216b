package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ItineraryJob tracks one itinerary-generation request through its lifecycle.
// The record is owned by the JobRepository; background tasks hold only the ID
// and re-fetch/re-write through the repository.
type ItineraryJob struct {
	ID        string            `json:"id"`
	Status    JobStatus         `json:"status"`
	Prompt    string            `json:"prompt"`
	FormData  *FormInputs       `json:"formData,omitempty"`
	Result    map[string]any    `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// JobUpdate is a partial patch applied through JobRepository.Update.
// Nil fields are left untouched.
type JobUpdate struct {
	Status   *JobStatus
	Result   map[string]any
	Error    *string
	Metadata map[string]string
}
