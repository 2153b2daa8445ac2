package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

// maxFailureDetails caps how many failed slots are copied into metadata.
const maxFailureDetails = 10

type Event struct {
	Event    models.NotificationEvent
	Severity models.NotificationSeverity
	Title    string
	Message  string
	Metadata map[string]interface{}
}

type Service interface {
	Publish(ctx context.Context, evt Event) (models.Notification, error)
	NotifySchedulesCreated(ctx context.Context, report models.ScheduleReport) error
	NotifyBatchCompleted(ctx context.Context, report models.BatchReport) error
	NotifyBatchFailed(ctx context.Context, reason string) error
	ListRecent(ctx context.Context, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int64) (models.Notification, error)
}

type service struct {
	repo      repository.NotificationRepository
	logger    zerolog.Logger
	notifiers []Notifier
}

func NewService(repo repository.NotificationRepository, logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &service{
		repo:      repo,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
	}
}

func (s *service) Publish(ctx context.Context, evt Event) (models.Notification, error) {
	if evt.Event == "" {
		return models.Notification{}, fmt.Errorf("event type is required")
	}
	if evt.Severity == "" {
		evt.Severity = models.NotificationSeverityInfo
	}
	title := strings.TrimSpace(evt.Title)
	if title == "" {
		title = string(evt.Event)
	}

	notif, err := s.repo.Create(ctx, repository.CreateNotificationParams{
		Event:    evt.Event,
		Severity: evt.Severity,
		Title:    title,
		Message:  strings.TrimSpace(evt.Message),
		Metadata: evt.Metadata,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", string(evt.Event)).Msg("failed to persist notification")
		return models.Notification{}, err
	}
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, notif); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("notification_id", notif.ID).
				Str("event_type", string(notif.EventType)).
				Str("channel", channelName(notifier)).
				Msg("failed to deliver dispatch event")
		}
	}
	return notif, nil
}

func (s *service) NotifySchedulesCreated(ctx context.Context, report models.ScheduleReport) error {
	if len(report.Scheduled) == 0 {
		return nil
	}
	jobs := make([]string, 0, len(report.Scheduled))
	for _, j := range report.Scheduled {
		jobs = append(jobs, fmt.Sprintf("%s@%s", j.JobNumber, j.ScheduledDate))
	}
	_, err := s.Publish(ctx, Event{
		Event:    models.NotificationEventSchedulesCreated,
		Severity: models.NotificationSeverityInfo,
		Title:    fmt.Sprintf("%d jobs scheduled", len(report.Scheduled)),
		Message:  report.Message,
		Metadata: map[string]interface{}{
			"scheduled": jobs,
			"skipped":   len(report.Skipped),
		},
	})
	return err
}

// NotifyBatchCompleted publishes assignment_batch_completed, or
// assignment_slots_unfilled with warning severity when any slot failed.
func (s *service) NotifyBatchCompleted(ctx context.Context, report models.BatchReport) error {
	evt := Event{
		Event:    models.NotificationEventAssignmentBatchCompleted,
		Severity: models.NotificationSeverityInfo,
		Title:    "Installer assignment complete",
		Message:  report.Message,
		Metadata: map[string]interface{}{
			"total_assignments":      report.TotalAssignments,
			"successful_assignments": report.SuccessfulAssignments,
			"failed_assignments":     report.FailedAssignments,
			"skipped_jobs":           len(report.SkippedJobs),
		},
	}
	if report.FailedAssignments > 0 {
		evt.Event = models.NotificationEventAssignmentSlotsUnfilled
		evt.Severity = models.NotificationSeverityWarning
		evt.Title = fmt.Sprintf("%d installer positions unfilled", report.FailedAssignments)
		evt.Metadata["failures"] = failureDetails(report)
	}
	_, err := s.Publish(ctx, evt)
	return err
}

func (s *service) NotifyBatchFailed(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Unknown error"
	}
	_, err := s.Publish(ctx, Event{
		Event:    models.NotificationEventAssignmentBatchFailed,
		Severity: models.NotificationSeverityError,
		Title:    "Scheduling batch failed",
		Message:  fmt.Sprintf("Batch aborted: %s", reason),
		Metadata: map[string]interface{}{"reason": reason},
	})
	return err
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	return s.repo.ListRecent(ctx, limit)
}

func (s *service) MarkRead(ctx context.Context, notificationID int64) (models.Notification, error) {
	return s.repo.MarkRead(ctx, notificationID)
}

func failureDetails(report models.BatchReport) []map[string]interface{} {
	var out []map[string]interface{}
	for _, o := range report.Assignments {
		if o.Status != models.SlotStatusFailed {
			continue
		}
		out = append(out, map[string]interface{}{
			"job_number": o.JobNumber,
			"trade":      o.Trade,
			"slot":       o.Slot + 1,
			"reason":     o.Reason,
		})
		if len(out) == maxFailureDetails {
			break
		}
	}
	return out
}
