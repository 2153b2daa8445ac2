package models

import (
	"encoding/json"
	"time"
)

type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
)

type NotificationEvent string

const (
	NotificationEventSchedulesCreated         NotificationEvent = "schedules_created"
	NotificationEventAssignmentBatchCompleted NotificationEvent = "assignment_batch_completed"
	NotificationEventAssignmentSlotsUnfilled  NotificationEvent = "assignment_slots_unfilled"
	NotificationEventAssignmentBatchFailed    NotificationEvent = "assignment_batch_failed"
)

type Notification struct {
	ID        int64                `json:"id" db:"notification_id"`
	EventType NotificationEvent    `json:"eventType" db:"event_type"`
	Severity  NotificationSeverity `json:"severity" db:"severity"`
	Title     string               `json:"title" db:"title"`
	Message   string               `json:"message" db:"message"`
	Metadata  json.RawMessage      `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time           `json:"readAt,omitempty" db:"read_at"`
}

func (e NotificationEvent) Valid() bool {
	switch e {
	case NotificationEventSchedulesCreated, NotificationEventAssignmentBatchCompleted,
		NotificationEventAssignmentSlotsUnfilled, NotificationEventAssignmentBatchFailed:
		return true
	}
	return false
}
