package temporal

import (
	"time"

	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/models"
)

// DefaultTaskQueue is used when temporal.task_queue is empty.
const DefaultTaskQueue = "DISPATCH_ASSIGNMENT"

const (
	// JobWorkflowIDPrefix plus the job id names the intake workflow, so
	// repeated events for one job collapse into a single run.
	JobWorkflowIDPrefix   = "dispatch-job-"
	BatchWorkflowIDPrefix = "dispatch-batch-"
)

// Registered workflow names. The dispatcher starts workflows by name.
const (
	JobIntakeWorkflowName       = "JobIntakeWorkflow"
	AssignmentBatchWorkflowName = "AssignmentBatchWorkflow"
)

// DefaultActivityTimeout bounds one scheduling or assignment pass.
const DefaultActivityTimeout = 5 * time.Minute

// RetrySettings is the activity retry policy carried in workflow input.
type RetrySettings struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	MaximumAttempts    int32
}

func RetrySettingsFromConfig(cfg config.TemporalConfig) RetrySettings {
	r := RetrySettings{
		InitialInterval:    cfg.InitialInterval,
		BackoffCoefficient: cfg.BackoffCoefficient,
		MaximumInterval:    cfg.MaximumInterval,
		MaximumAttempts:    cfg.MaxAttempts,
	}
	if r.InitialInterval <= 0 {
		r.InitialInterval = 2 * time.Second
	}
	if r.BackoffCoefficient < 1 {
		r.BackoffCoefficient = 2.0
	}
	if r.MaximumInterval <= 0 {
		r.MaximumInterval = time.Minute
	}
	if r.MaximumAttempts <= 0 {
		r.MaximumAttempts = 5
	}
	return r
}

// JobIntakeParams is the input of the workflow started when a job is created.
type JobIntakeParams struct {
	JobID int64
	Limit int
	Retry RetrySettings
}

type JobIntakeResult struct {
	Scheduling models.ScheduleReport
	Assignment models.BatchReport
}

// BatchParams is the input of an ad-hoc assignment run.
type BatchParams struct {
	Limit int
	Retry RetrySettings
}

// DispatchStatus values reported back to HTTP callers.
const (
	DispatchQueued   = "queued"
	DispatchFailed   = "failed"
	DispatchDisabled = "disabled"
)

type DispatchResult struct {
	Status     string `json:"status"`
	WorkflowID string `json:"workflowId,omitempty"`
	RunID      string `json:"runId,omitempty"`
	Error      string `json:"error,omitempty"`
}
