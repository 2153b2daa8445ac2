package models

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusScheduled, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

type Job struct {
	ID            int64     `json:"jobId" db:"job_id"`
	JobNumber     string    `json:"jobNumber" db:"job_number"`
	StreetAddress string    `json:"streetAddress" db:"street_address"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state" db:"state"`
	ZipCode       string    `json:"zipCode" db:"zip_code"`
	LocationID    *int64    `json:"locationId" db:"location_id"`
	Status        JobStatus `json:"status" db:"status"`
	StartDate     *Date     `json:"startDate" db:"start_date"`
	EndDate       *Date     `json:"endDate" db:"end_date"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// UnscheduledJob is a job with no schedule row yet.
type UnscheduledJob struct {
	JobID     int64  `json:"jobId"`
	JobNumber string `json:"jobNumber"`
	StartDate *Date  `json:"startDate"`
	EndDate   *Date  `json:"endDate"`
	Address   string `json:"address"`
}

// AssignableJob is a (job, schedule) pair whose schedule has no assignments.
type AssignableJob struct {
	JobID         int64  `json:"jobId"`
	JobNumber     string `json:"jobNumber"`
	ScheduleID    int64  `json:"scheduleId"`
	ScheduledDate Date   `json:"scheduledDate"`
	LocationID    *int64 `json:"locationId"`
}
