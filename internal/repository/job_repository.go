package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stanstork/crewdispatch/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job models.Job) (models.Job, error)
	Get(ctx context.Context, jobID int64) (models.Job, error)
	List(ctx context.Context, status models.JobStatus) ([]models.Job, error)
	UpdateStatus(ctx context.Context, jobID int64, status models.JobStatus) error

	// FindJobsNeedingSchedule returns open jobs with no schedule row,
	// jobs with a start date first.
	FindJobsNeedingSchedule(ctx context.Context, limit int) ([]models.UnscheduledJob, error)
	// FindJobsNeedingAssignment returns schedules that have no assignment
	// rows at all, earliest date first.
	FindJobsNeedingAssignment(ctx context.Context, limit int) ([]models.AssignableJob, error)
}

type jobRepository struct {
	q Querier
}

func NewJobRepository(q Querier) JobRepository {
	return &jobRepository{q: q}
}

const jobColumns = `
	job_id, job_number, street_address, city, state, zip_code, location_id,
	status, start_date, end_date, created_at, updated_at`

func (r *jobRepository) Create(ctx context.Context, job models.Job) (models.Job, error) {
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	const query = `
		INSERT INTO dispatch.jobs (job_number, street_address, city, state, zip_code, location_id, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING job_id, created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		strings.TrimSpace(job.JobNumber),
		job.StreetAddress,
		job.City,
		job.State,
		job.ZipCode,
		int64Arg(job.LocationID),
		job.Status,
		dateArg(job.StartDate),
		dateArg(job.EndDate),
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return models.Job{}, classify(err)
	}
	return job, nil
}

func (r *jobRepository) Get(ctx context.Context, jobID int64) (models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM dispatch.jobs WHERE job_id = $1`
	job, err := scanJob(r.q.QueryRowContext(ctx, query, jobID))
	if err != nil {
		return models.Job{}, classify(err)
	}
	return job, nil
}

func (r *jobRepository) List(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM dispatch.jobs`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY job_id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) UpdateStatus(ctx context.Context, jobID int64, status models.JobStatus) error {
	const query = `
		UPDATE dispatch.jobs
		SET status = $1, updated_at = NOW()
		WHERE job_id = $2
	`
	res, err := r.q.ExecContext(ctx, query, status, jobID)
	if err != nil {
		return fmt.Errorf("failed to update job %d status: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobRepository) FindJobsNeedingSchedule(ctx context.Context, limit int) ([]models.UnscheduledJob, error) {
	const query = `
		SELECT j.job_id, j.job_number, j.start_date, j.end_date,
		       j.street_address || ', ' || j.city || ', ' || j.state || ' ' || j.zip_code AS address
		FROM dispatch.jobs j
		LEFT JOIN dispatch.job_schedules js ON js.job_id = j.job_id
		WHERE js.schedule_id IS NULL
		  AND j.status NOT IN ('cancelled', 'completed')
		ORDER BY j.start_date IS NULL, j.job_id
		LIMIT $1
	`
	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unscheduled jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.UnscheduledJob{}
	for rows.Next() {
		var (
			job   models.UnscheduledJob
			start sql.NullTime
			end   sql.NullTime
		)
		if err := rows.Scan(&job.JobID, &job.JobNumber, &start, &end, &job.Address); err != nil {
			return nil, err
		}
		job.StartDate = nullDatePtr(start)
		job.EndDate = nullDatePtr(end)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) FindJobsNeedingAssignment(ctx context.Context, limit int) ([]models.AssignableJob, error) {
	const query = `
		SELECT DISTINCT j.job_id, j.job_number, js.schedule_id, js.scheduled_date, j.location_id
		FROM dispatch.job_schedules js
		JOIN dispatch.jobs j ON j.job_id = js.job_id
		WHERE js.schedule_id NOT IN (
			SELECT DISTINCT ia.schedule_id FROM dispatch.installer_assignments ia
		)
		ORDER BY js.scheduled_date, js.schedule_id
		LIMIT $1
	`
	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs needing assignment: %w", err)
	}
	defer rows.Close()

	jobs := []models.AssignableJob{}
	for rows.Next() {
		var (
			job        models.AssignableJob
			locationID sql.NullInt64
		)
		if err := rows.Scan(&job.JobID, &job.JobNumber, &job.ScheduleID, &job.ScheduledDate, &locationID); err != nil {
			return nil, err
		}
		job.LocationID = nullInt64Ptr(locationID)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(scanner rowScanner) (models.Job, error) {
	var (
		job        models.Job
		locationID sql.NullInt64
		start      sql.NullTime
		end        sql.NullTime
	)
	if err := scanner.Scan(
		&job.ID,
		&job.JobNumber,
		&job.StreetAddress,
		&job.City,
		&job.State,
		&job.ZipCode,
		&locationID,
		&job.Status,
		&start,
		&end,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return models.Job{}, err
	}
	job.LocationID = nullInt64Ptr(locationID)
	job.StartDate = nullDatePtr(start)
	job.EndDate = nullDatePtr(end)
	return job, nil
}
