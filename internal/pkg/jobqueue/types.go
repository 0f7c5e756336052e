package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeServiceReminder   JobType = "service_reminder"
	JobTypeAutoCompleteSweep JobType = "booking_autocomplete"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ServiceReminderJobPayload contains the payload for service reminder jobs.
// The job carries only the booking ID; everything else is re-read at send
// time because the booking may have changed since scheduling.
type ServiceReminderJobPayload struct {
	BookingID uint `json:"booking_id"`
}

// ToMap converts the payload to a map for storage
func (p ServiceReminderJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"booking_id": p.BookingID,
	}
}

// ServiceReminderJobPayloadFromMap creates a payload from a map
func ServiceReminderJobPayloadFromMap(data map[string]interface{}) (*ServiceReminderJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ServiceReminderJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// AutoCompleteSweepJobPayload contains the payload for booking auto-complete
// sweep jobs. The sweep queries for expired bookings itself, so the payload
// is empty apart from the trigger source used in logs.
type AutoCompleteSweepJobPayload struct {
	TriggeredBy string `json:"triggered_by"`
}

func (p AutoCompleteSweepJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"triggered_by": p.TriggeredBy,
	}
}

func AutoCompleteSweepJobPayloadFromMap(data map[string]interface{}) (*AutoCompleteSweepJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload AutoCompleteSweepJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
