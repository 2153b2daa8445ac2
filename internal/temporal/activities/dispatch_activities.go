package activities

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stanstork/crewdispatch/internal/models"
	"go.temporal.io/sdk/activity"
)

// Runner is the part of the scheduling engine the activities drive.
type Runner interface {
	ScheduleJobs(ctx context.Context, limit int) (models.ScheduleReport, error)
	AssignInstallers(ctx context.Context, limit int) (models.BatchReport, error)
}

type Activities struct {
	Engine Runner
}

func (a *Activities) ScheduleJobsActivity(ctx context.Context, limit int) (models.ScheduleReport, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Scheduling unscheduled jobs", "limit", limit, "attempt", activity.GetInfo(ctx).Attempt)

	report, err := a.Engine.ScheduleJobs(ctx, limit)
	if err != nil {
		logger.Error("Scheduling pass failed", "error", err)
		return models.ScheduleReport{}, errors.Wrap(err, "scheduling pass failed")
	}
	logger.Info("Scheduling pass complete", "scheduled", len(report.Scheduled), "skipped", len(report.Skipped))
	return report, nil
}

func (a *Activities) AssignInstallersActivity(ctx context.Context, limit int) (models.BatchReport, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Assigning installers", "limit", limit, "attempt", activity.GetInfo(ctx).Attempt)

	report, err := a.Engine.AssignInstallers(ctx, limit)
	if err != nil {
		logger.Error("Assignment pass failed", "error", err)
		return models.BatchReport{}, errors.Wrap(err, "assignment pass failed")
	}
	logger.Info("Assignment pass complete",
		"successful", report.SuccessfulAssignments,
		"failed", report.FailedAssignments)
	return report, nil
}
