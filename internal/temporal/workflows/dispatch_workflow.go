package workflows

import (
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/temporal"
	"github.com/stanstork/crewdispatch/internal/temporal/activities"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func activityOptions(retry temporal.RetrySettings) workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: temporal.DefaultActivityTimeout,
		RetryPolicy: &sdktemporal.RetryPolicy{
			InitialInterval:    retry.InitialInterval,
			BackoffCoefficient: retry.BackoffCoefficient,
			MaximumInterval:    retry.MaximumInterval,
			MaximumAttempts:    retry.MaximumAttempts,
		},
	}
}

// JobIntakeWorkflow runs a scheduling pass and then an assignment pass after
// a job is created.
func JobIntakeWorkflow(ctx workflow.Context, params temporal.JobIntakeParams) (temporal.JobIntakeResult, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions(params.Retry))
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting job intake workflow", "JobID", params.JobID, "Limit", params.Limit)

	var a *activities.Activities
	var result temporal.JobIntakeResult

	err := workflow.ExecuteActivity(ctx, a.ScheduleJobsActivity, params.Limit).Get(ctx, &result.Scheduling)
	if err != nil {
		logger.Error("Scheduling activity failed.", "JobID", params.JobID, "error", err)
		return result, err
	}

	err = workflow.ExecuteActivity(ctx, a.AssignInstallersActivity, params.Limit).Get(ctx, &result.Assignment)
	if err != nil {
		logger.Error("Assignment activity failed.", "JobID", params.JobID, "error", err)
		return result, err
	}

	logger.Info("Job intake workflow completed.",
		"JobID", params.JobID,
		"Scheduled", len(result.Scheduling.Scheduled),
		"Assigned", result.Assignment.SuccessfulAssignments)
	return result, nil
}

// AssignmentBatchWorkflow runs one assignment pass.
func AssignmentBatchWorkflow(ctx workflow.Context, params temporal.BatchParams) (models.BatchReport, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions(params.Retry))
	logger := workflow.GetLogger(ctx)

	var a *activities.Activities
	var report models.BatchReport
	if err := workflow.ExecuteActivity(ctx, a.AssignInstallersActivity, params.Limit).Get(ctx, &report); err != nil {
		logger.Error("Assignment activity failed.", "error", err)
		return report, err
	}
	logger.Info("Assignment batch workflow completed.", "Message", report.Message)
	return report, nil
}

// Register adds the dispatch workflows and activities to a worker.
func Register(r worker.Registry, acts *activities.Activities) {
	r.RegisterWorkflowWithOptions(JobIntakeWorkflow, workflow.RegisterOptions{Name: temporal.JobIntakeWorkflowName})
	r.RegisterWorkflowWithOptions(AssignmentBatchWorkflow, workflow.RegisterOptions{Name: temporal.AssignmentBatchWorkflowName})
	r.RegisterActivity(acts)
}
