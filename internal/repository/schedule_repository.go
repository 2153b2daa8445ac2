package repository

import (
	"context"
	"database/sql"

	"github.com/stanstork/crewdispatch/internal/models"
)

type ScheduleRepository interface {
	// Create inserts the schedule and marks its job scheduled.
	Create(ctx context.Context, s models.NewSchedule) (models.JobSchedule, error)
	ListByJob(ctx context.Context, jobID int64) ([]models.JobSchedule, error)
}

type scheduleRepository struct {
	q Querier
}

func NewScheduleRepository(q Querier) ScheduleRepository {
	return &scheduleRepository{q: q}
}

func (r *scheduleRepository) Create(ctx context.Context, s models.NewSchedule) (models.JobSchedule, error) {
	const insert = `
		INSERT INTO dispatch.job_schedules (job_id, scheduled_date, status, notes)
		VALUES ($1, $2, 'scheduled', $3)
		RETURNING schedule_id, job_id, scheduled_date, status, notes, created_at
	`
	const markJob = `
		UPDATE dispatch.jobs
		SET status = 'scheduled', updated_at = NOW()
		WHERE job_id = $1
	`

	var schedule models.JobSchedule
	err := withTx(ctx, r.q, func(q Querier) error {
		var err error
		schedule, err = scanSchedule(q.QueryRowContext(ctx, insert, s.JobID, s.ScheduledDate, optionalString(s.Notes)))
		if err != nil {
			return classify(err)
		}
		if _, err := q.ExecContext(ctx, markJob, s.JobID); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return models.JobSchedule{}, err
	}
	return schedule, nil
}

func (r *scheduleRepository) ListByJob(ctx context.Context, jobID int64) ([]models.JobSchedule, error) {
	const query = `
		SELECT schedule_id, job_id, scheduled_date, status, notes, created_at
		FROM dispatch.job_schedules
		WHERE job_id = $1
		ORDER BY scheduled_date, schedule_id
	`
	rows, err := r.q.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []models.JobSchedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func scanSchedule(scanner rowScanner) (models.JobSchedule, error) {
	var (
		s     models.JobSchedule
		notes sql.NullString
	)
	if err := scanner.Scan(&s.ID, &s.JobID, &s.ScheduledDate, &s.Status, &notes, &s.CreatedAt); err != nil {
		return models.JobSchedule{}, err
	}
	s.Notes = nullStringPtr(notes)
	return s, nil
}
