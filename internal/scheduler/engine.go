package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

const DefaultBatchLimit = 10

const (
	msgNoAssignableJobs  = "No jobs with schedules but no assignments found"
	msgNoUnscheduledJobs = "No jobs without schedules found"
	msgCombinedComplete  = "Job scheduling and installer assignment completed"
	msgCombinedFailed    = "Job scheduling and installer assignment stopped on an error"
	scheduleNote         = "Auto-scheduled from job start date"
)

// Store is everything the engine reads and writes.
type Store interface {
	FindJobsNeedingSchedule(ctx context.Context, limit int) ([]models.UnscheduledJob, error)
	CreateSchedule(ctx context.Context, s models.NewSchedule) (models.JobSchedule, error)
	FindJobsNeedingAssignment(ctx context.Context, limit int) ([]models.AssignableJob, error)
	ListPurchaseOrders(ctx context.Context, jobID int64) ([]models.PurchaseOrder, error)
	// WithSlot runs fn for one (date, trade) slot. An error returned by fn
	// is returned unchanged.
	WithSlot(ctx context.Context, date models.Date, trade models.Trade, fn func(repository.SlotStore) error) error
}

// Notifier receives run outcomes. Failures are logged and never change the
// result of a run.
type Notifier interface {
	NotifySchedulesCreated(ctx context.Context, report models.ScheduleReport) error
	NotifyBatchCompleted(ctx context.Context, report models.BatchReport) error
	NotifyBatchFailed(ctx context.Context, reason string) error
}

type Engine struct {
	store    Store
	policy   Policy
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewEngine(store Store, policy Policy, notifier Notifier, logger zerolog.Logger) *Engine {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Engine{
		store:    store,
		policy:   policy,
		notifier: notifier,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

// ScheduleJobs creates a schedule on the start date of every open job that
// has none. Jobs without a start date, and jobs whose schedule insert hits a
// constraint, are reported as skipped.
func (e *Engine) ScheduleJobs(ctx context.Context, limit int) (models.ScheduleReport, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	report := models.NewScheduleReport()

	jobs, err := e.store.FindJobsNeedingSchedule(ctx, limit)
	if err != nil {
		e.fail(ctx, err)
		return report, errors.Wrap(err, "failed to find jobs needing a schedule")
	}
	e.logger.Info().Int("limit", limit).Int("jobs", len(jobs)).Msg("scheduling pass started")

	if len(jobs) == 0 {
		report.Message = msgNoUnscheduledJobs
		return report, nil
	}

	for _, job := range jobs {
		if job.StartDate == nil {
			e.logger.Warn().Int64("job_id", job.JobID).Str("job_number", job.JobNumber).Msg("job has no start date, skipping")
			report.Skipped = append(report.Skipped, models.SkippedJob{
				JobID:     job.JobID,
				JobNumber: job.JobNumber,
				Reason:    "job has no start date",
			})
			continue
		}

		schedule, err := e.store.CreateSchedule(ctx, models.NewSchedule{
			JobID:         job.JobID,
			ScheduledDate: *job.StartDate,
			Notes:         scheduleNote,
		})
		if err != nil {
			if isSlotConflict(err) {
				e.logger.Warn().Err(err).Int64("job_id", job.JobID).Msg("schedule insert rejected, skipping")
				report.Skipped = append(report.Skipped, models.SkippedJob{
					JobID:     job.JobID,
					JobNumber: job.JobNumber,
					Reason:    fmt.Sprintf("could not create schedule: %v", err),
				})
				continue
			}
			e.fail(ctx, err)
			return report, errors.Wrapf(err, "failed to schedule job %s", job.JobNumber)
		}

		e.logger.Info().
			Int64("job_id", job.JobID).
			Int64("schedule_id", schedule.ID).
			Str("date", schedule.ScheduledDate.String()).
			Msg("job scheduled")
		report.Scheduled = append(report.Scheduled, models.ScheduledJob{
			JobID:         job.JobID,
			JobNumber:     job.JobNumber,
			ScheduleID:    schedule.ID,
			ScheduledDate: schedule.ScheduledDate,
		})
	}

	report.Message = fmt.Sprintf("Scheduled %d jobs, %d jobs skipped", len(report.Scheduled), len(report.Skipped))
	if len(report.Scheduled) > 0 {
		if err := e.notifier.NotifySchedulesCreated(ctx, report); err != nil {
			e.logger.Warn().Err(err).Msg("failed to publish schedules notification")
		}
	}
	return report, nil
}

// AssignInstallers fills the installer slots of every schedule that has no
// assignments yet. Jobs are handled in query order, trades in the order
// trim, stairs, doors, and slot 0 before slot 1. Slots that cannot be filled
// are recorded as failed; only store failures outside the assignment insert
// abort the batch, and assignments written before the abort are kept.
func (e *Engine) AssignInstallers(ctx context.Context, limit int) (models.BatchReport, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	report := models.NewBatchReport()

	e.logger.Info().Int("limit", limit).Msg("assignment pass started")
	jobs, err := e.store.FindJobsNeedingAssignment(ctx, limit)
	if err != nil {
		e.fail(ctx, err)
		return report, errors.Wrap(err, "failed to find jobs needing assignment")
	}

	if len(jobs) == 0 {
		e.logger.Warn().Msg(msgNoAssignableJobs)
		report.Message = msgNoAssignableJobs
		return report, nil
	}
	e.logger.Info().Int("jobs", len(jobs)).Msg("found jobs with schedules but no assignments")

	for _, job := range jobs {
		if err := e.assignJob(ctx, job, &report); err != nil {
			e.fail(ctx, err)
			return report, err
		}
	}

	report.Summarize()
	e.logger.Info().
		Int("total", report.TotalAssignments).
		Int("successful", report.SuccessfulAssignments).
		Int("failed", report.FailedAssignments).
		Int("skipped_jobs", len(report.SkippedJobs)).
		Msg("assignment pass complete")

	if err := e.notifier.NotifyBatchCompleted(ctx, report); err != nil {
		e.logger.Warn().Err(err).Msg("failed to publish batch notification")
	}
	return report, nil
}

// ScheduleAndAssign runs a scheduling pass followed by an assignment pass.
// On a fatal error the returned report holds whatever both passes completed.
func (e *Engine) ScheduleAndAssign(ctx context.Context, limit int) (models.CombinedReport, error) {
	report := models.CombinedReport{
		Message:    msgCombinedFailed,
		Scheduling: models.NewScheduleReport(),
		Assignment: models.NewBatchReport(),
	}

	var err error
	report.Scheduling, err = e.ScheduleJobs(ctx, limit)
	if err != nil {
		report.Timestamp = e.now().UTC()
		return report, err
	}
	report.Assignment, err = e.AssignInstallers(ctx, limit)
	report.Timestamp = e.now().UTC()
	if err != nil {
		return report, err
	}
	report.Message = msgCombinedComplete
	return report, nil
}

func (e *Engine) assignJob(ctx context.Context, job models.AssignableJob, report *models.BatchReport) error {
	log := e.logger.With().
		Int64("job_id", job.JobID).
		Str("job_number", job.JobNumber).
		Int64("schedule_id", job.ScheduleID).
		Logger()
	log.Info().Interface("location_id", job.LocationID).Msg("processing job")

	pos, err := e.store.ListPurchaseOrders(ctx, job.JobID)
	if err != nil {
		return errors.Wrapf(err, "failed to load purchase orders for job %s", job.JobNumber)
	}
	if len(pos) == 0 {
		log.Warn().Msg("no purchase orders, skipping")
		report.Skip(skipped(job, "no purchase orders"))
		return nil
	}

	demand := AggregateDemand(pos, e.policy)
	log.Info().
		Str("trim_linear_feet", demand.TrimLinearFeet.String()).
		Int("stair_risers", demand.StairRisers).
		Int("door_count", demand.DoorCount).
		Int("slots", demand.Slots()).
		Msg("aggregated trade demand")
	if demand.Empty() {
		log.Warn().Msg("no trades needed, skipping")
		report.Skip(skipped(job, "purchase orders carry no trade quantities"))
		return nil
	}

	for _, td := range demand.Trades {
		var taken []int64
		for slot := 0; slot < td.InstallersNeeded; slot++ {
			outcome, err := e.fillSlot(ctx, job, td, slot, taken)
			if err != nil {
				return err
			}
			if outcome.Status == models.SlotStatusAssigned {
				taken = append(taken, *outcome.InstallerID)
				log.Info().
					Str("trade", string(td.Trade)).
					Int64("installer_id", *outcome.InstallerID).
					Str("installer", outcome.InstallerName).
					Msg("installer assigned")
			} else {
				log.Warn().
					Str("trade", string(td.Trade)).
					Int("slot", slot).
					Str("reason", outcome.Reason).
					Msg("slot not filled")
			}
			report.Record(outcome)
		}
	}
	return nil
}

func (e *Engine) fillSlot(ctx context.Context, job models.AssignableJob, td TradeDemand, slot int, taken []int64) (models.SlotOutcome, error) {
	outcome := models.SlotOutcome{
		JobID:      job.JobID,
		JobNumber:  job.JobNumber,
		ScheduleID: job.ScheduleID,
		Trade:      td.Trade,
		Slot:       slot,
		POIDs:      td.POIDs,
		Status:     models.SlotStatusFailed,
	}
	primary := td.PrimaryPOID()
	date := job.ScheduledDate
	filter := models.CandidateFilter{
		Trade:               td.Trade,
		IsActive:            true,
		LocationID:          job.LocationID,
		ExcludeDate:         &date,
		ExcludeInstallerIDs: taken,
	}

	err := e.store.WithSlot(ctx, date, td.Trade, func(s repository.SlotStore) error {
		// The schedule had no assignments when the batch read it, so any
		// beyond this run's own were written by another run.
		held, err := s.CountTradeAssignments(ctx, job.ScheduleID, td.Trade)
		if err != nil {
			return errors.Wrapf(err, "failed to count %s assignments", td.Trade)
		}
		if held > len(taken) {
			outcome.Reason = fmt.Sprintf("Trade already staffed by a concurrent run (installer %d of %d)", slot+1, td.InstallersNeeded)
			return nil
		}

		candidates, err := s.FindCandidates(ctx, filter)
		if err != nil {
			return errors.Wrapf(err, "failed to find %s candidates", td.Trade)
		}
		picked, err := SelectCandidate(candidates, primary, slot)
		if err != nil {
			outcome.Reason = fmt.Sprintf("No available installers for this trade (installer %d of %d)", slot+1, td.InstallersNeeded)
			return nil
		}

		assignment, err := s.CreateAssignment(ctx, models.NewAssignment{
			ScheduleID:  job.ScheduleID,
			InstallerID: picked.ID,
			POID:        primary,
			Notes:       fmt.Sprintf("Auto-assigned %s for %s work (%d of %d)", picked.FullName(), td.Trade, slot+1, td.InstallersNeeded),
		})
		if err != nil {
			return err
		}

		installerID, assignmentID, poID := picked.ID, assignment.ID, primary
		outcome.Status = models.SlotStatusAssigned
		outcome.InstallerID = &installerID
		outcome.InstallerName = picked.FullName()
		outcome.AssignmentID = &assignmentID
		outcome.POID = &poID
		return nil
	})
	if err == nil {
		return outcome, nil
	}
	if isSlotConflict(err) {
		outcome.Reason = fmt.Sprintf("Error assigning installer: %v", err)
		return outcome, nil
	}
	return outcome, errors.Wrapf(err, "failed to fill %s slot %d for job %s", td.Trade, slot+1, job.JobNumber)
}

func (e *Engine) fail(ctx context.Context, cause error) {
	e.logger.Error().Err(cause).Msg("batch aborted")
	if err := e.notifier.NotifyBatchFailed(ctx, cause.Error()); err != nil {
		e.logger.Warn().Err(err).Msg("failed to publish batch failure notification")
	}
}

// isSlotConflict reports whether err is a constraint violation on a single
// insert rather than a store failure.
func isSlotConflict(err error) bool {
	return errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrInvalidReference)
}

func skipped(job models.AssignableJob, reason string) models.SkippedJob {
	scheduleID := job.ScheduleID
	return models.SkippedJob{
		JobID:      job.JobID,
		JobNumber:  job.JobNumber,
		ScheduleID: &scheduleID,
		Reason:     reason,
	}
}

type nopNotifier struct{}

func (nopNotifier) NotifySchedulesCreated(context.Context, models.ScheduleReport) error { return nil }
func (nopNotifier) NotifyBatchCompleted(context.Context, models.BatchReport) error      { return nil }
func (nopNotifier) NotifyBatchFailed(context.Context, string) error                    { return nil }
