package models

import "time"

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// InstallerAssignment is unique per (schedule, installer, purchase order).
type InstallerAssignment struct {
	ID          int64            `json:"assignmentId" db:"assignment_id"`
	ScheduleID  int64            `json:"scheduleId" db:"schedule_id"`
	InstallerID int64            `json:"installerId" db:"installer_id"`
	POID        int64            `json:"poId" db:"po_id"`
	Status      AssignmentStatus `json:"assignmentStatus" db:"assignment_status"`
	Notes       *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}

type NewAssignment struct {
	ScheduleID  int64  `json:"scheduleId"`
	InstallerID int64  `json:"installerId"`
	POID        int64  `json:"poId"`
	Notes       string `json:"notes"`
}
