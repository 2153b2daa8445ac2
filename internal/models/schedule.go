package models

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

type JobSchedule struct {
	ID            int64          `json:"scheduleId" db:"schedule_id"`
	JobID         int64          `json:"jobId" db:"job_id"`
	ScheduledDate Date           `json:"scheduledDate" db:"scheduled_date"`
	Status        ScheduleStatus `json:"status" db:"status"`
	Notes         *string        `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
}

type NewSchedule struct {
	JobID         int64  `json:"jobId"`
	ScheduledDate Date   `json:"scheduledDate"`
	Notes         string `json:"notes"`
}
