package temporal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/config"
	"go.temporal.io/sdk/client"
)

// Dispatcher hands scheduling work to the task queue without waiting for it.
type Dispatcher interface {
	DispatchJobCreated(ctx context.Context, jobID int64) DispatchResult
	DispatchBatch(ctx context.Context, limit int) DispatchResult
}

type temporalDispatcher struct {
	client    client.Client
	taskQueue string
	limit     int
	retry     RetrySettings
	logger    zerolog.Logger
}

func NewDispatcher(c client.Client, cfg config.TemporalConfig, batchLimit int, logger zerolog.Logger) Dispatcher {
	queue := cfg.TaskQueue
	if queue == "" {
		queue = DefaultTaskQueue
	}
	return &temporalDispatcher{
		client:    c,
		taskQueue: queue,
		limit:     batchLimit,
		retry:     RetrySettingsFromConfig(cfg),
		logger:    logger.With().Str("component", "dispatcher").Logger(),
	}
}

func (d *temporalDispatcher) DispatchJobCreated(ctx context.Context, jobID int64) DispatchResult {
	workflowID := JobWorkflowIDPrefix + strconv.FormatInt(jobID, 10)
	params := JobIntakeParams{JobID: jobID, Limit: d.limit, Retry: d.retry}
	return d.start(ctx, workflowID, JobIntakeWorkflowName, params)
}

func (d *temporalDispatcher) DispatchBatch(ctx context.Context, limit int) DispatchResult {
	if limit <= 0 {
		limit = d.limit
	}
	workflowID := BatchWorkflowIDPrefix + uuid.New().String()
	return d.start(ctx, workflowID, AssignmentBatchWorkflowName, BatchParams{Limit: limit, Retry: d.retry})
}

func (d *temporalDispatcher) start(ctx context.Context, workflowID, workflowName string, params interface{}) DispatchResult {
	opts := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: d.taskQueue,
	}
	run, err := d.client.ExecuteWorkflow(ctx, opts, workflowName, params)
	if err != nil {
		d.logger.Error().Err(err).Str("workflow_id", workflowID).Msg("failed to start workflow")
		return DispatchResult{
			Status:     DispatchFailed,
			WorkflowID: workflowID,
			Error:      fmt.Sprintf("failed to start %s: %v", workflowName, err),
		}
	}
	d.logger.Info().
		Str("workflow_id", run.GetID()).
		Str("run_id", run.GetRunID()).
		Str("workflow", workflowName).
		Msg("workflow started")
	return DispatchResult{Status: DispatchQueued, WorkflowID: run.GetID(), RunID: run.GetRunID()}
}

type nopDispatcher struct {
	logger zerolog.Logger
}

// NewNopDispatcher is used when Temporal is disabled.
func NewNopDispatcher(logger zerolog.Logger) Dispatcher {
	return nopDispatcher{logger: logger.With().Str("component", "dispatcher").Logger()}
}

func (d nopDispatcher) DispatchJobCreated(_ context.Context, jobID int64) DispatchResult {
	d.logger.Info().Int64("job_id", jobID).Msg("temporal disabled, job intake not dispatched")
	return DispatchResult{Status: DispatchDisabled}
}

func (d nopDispatcher) DispatchBatch(_ context.Context, limit int) DispatchResult {
	d.logger.Info().Int("limit", limit).Msg("temporal disabled, batch not dispatched")
	return DispatchResult{Status: DispatchDisabled}
}
