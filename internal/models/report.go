package models

import (
	"fmt"
	"time"
)

type SlotStatus string

const (
	SlotStatusAssigned SlotStatus = "assigned"
	SlotStatusFailed   SlotStatus = "failed"
)

// SlotOutcome records what happened to one installer slot of one trade.
type SlotOutcome struct {
	JobID         int64      `json:"jobId"`
	JobNumber     string     `json:"jobNumber"`
	ScheduleID    int64      `json:"scheduleId"`
	Trade         Trade      `json:"trade"`
	Slot          int        `json:"slot"`
	InstallerID   *int64     `json:"installerId"`
	InstallerName string     `json:"installerName,omitempty"`
	AssignmentID  *int64     `json:"assignmentId,omitempty"`
	POID          *int64     `json:"poId,omitempty"`
	POIDs         []int64    `json:"poIds"`
	Status        SlotStatus `json:"status"`
	Reason        string     `json:"reason,omitempty"`
}

// SkippedJob is a job the engine passed over without treating it as an error.
type SkippedJob struct {
	JobID      int64  `json:"jobId"`
	JobNumber  string `json:"jobNumber"`
	ScheduleID *int64 `json:"scheduleId,omitempty"`
	Reason     string `json:"reason"`
}

// BatchReport is the result of one assignment pass.
type BatchReport struct {
	Message               string        `json:"message"`
	TotalAssignments      int           `json:"totalAssignments"`
	SuccessfulAssignments int           `json:"successfulAssignments"`
	FailedAssignments     int           `json:"failedAssignments"`
	Assignments           []SlotOutcome `json:"assignments"`
	SkippedJobs           []SkippedJob  `json:"skippedJobs"`
}

func NewBatchReport() BatchReport {
	return BatchReport{
		Assignments: []SlotOutcome{},
		SkippedJobs: []SkippedJob{},
	}
}

func (r *BatchReport) Record(o SlotOutcome) {
	r.Assignments = append(r.Assignments, o)
	r.TotalAssignments++
	switch o.Status {
	case SlotStatusAssigned:
		r.SuccessfulAssignments++
	case SlotStatusFailed:
		r.FailedAssignments++
	}
}

func (r *BatchReport) Skip(s SkippedJob) {
	r.SkippedJobs = append(r.SkippedJobs, s)
}

// Summarize fills Message from the counters.
func (r *BatchReport) Summarize() {
	r.Message = fmt.Sprintf("Assigned installers to %d positions, %d positions could not be assigned",
		r.SuccessfulAssignments, r.FailedAssignments)
}

type ScheduledJob struct {
	JobID         int64  `json:"jobId"`
	JobNumber     string `json:"jobNumber"`
	ScheduleID    int64  `json:"scheduleId"`
	ScheduledDate Date   `json:"scheduledDate"`
}

// ScheduleReport is the result of one scheduling pass.
type ScheduleReport struct {
	Message   string         `json:"message"`
	Scheduled []ScheduledJob `json:"scheduled"`
	Skipped   []SkippedJob   `json:"skipped"`
}

func NewScheduleReport() ScheduleReport {
	return ScheduleReport{
		Scheduled: []ScheduledJob{},
		Skipped:   []SkippedJob{},
	}
}

type CombinedReport struct {
	Message    string         `json:"message"`
	Scheduling ScheduleReport `json:"schedulingResult"`
	Assignment BatchReport    `json:"assignmentResult"`
	Timestamp  time.Time      `json:"timestamp"`
}
