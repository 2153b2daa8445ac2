package handlers

import (
	"context"

	"github.com/stanstork/crewdispatch/internal/models"
)

// Engine runs the scheduling and assignment passes synchronously.
type Engine interface {
	ScheduleJobs(ctx context.Context, limit int) (models.ScheduleReport, error)
	AssignInstallers(ctx context.Context, limit int) (models.BatchReport, error)
	ScheduleAndAssign(ctx context.Context, limit int) (models.CombinedReport, error)
}
