package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindJobsNeedingAssignment(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepository(db)

	date := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"job_id", "job_number", "schedule_id", "scheduled_date", "location_id"}).
		AddRow(1, "J-1", 10, date, 3).
		AddRow(2, "J-2", 11, date, nil)
	mock.ExpectQuery(`NOT IN \(\s*SELECT DISTINCT ia.schedule_id FROM dispatch.installer_assignments ia`).
		WithArgs(10).
		WillReturnRows(rows)

	jobs, err := repo.FindJobsNeedingAssignment(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, int64(10), jobs[0].ScheduleID)
	assert.Equal(t, "2024-05-06", jobs[0].ScheduledDate.String())
	require.NotNil(t, jobs[0].LocationID)
	assert.Equal(t, int64(3), *jobs[0].LocationID)
	assert.Nil(t, jobs[1].LocationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindJobsNeedingSchedule(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepository(db)

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"job_id", "job_number", "start_date", "end_date", "address"}).
		AddRow(4, "J-4", start, nil, "1 Main St, Austin, TX 78701").
		AddRow(5, "J-5", nil, nil, "2 Main St, Austin, TX 78701")
	mock.ExpectQuery(`LEFT JOIN dispatch.job_schedules js`).
		WithArgs(5).
		WillReturnRows(rows)

	jobs, err := repo.FindJobsNeedingSchedule(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.NotNil(t, jobs[0].StartDate)
	assert.Equal(t, "2024-06-01", jobs[0].StartDate.String())
	assert.Nil(t, jobs[0].EndDate)
	assert.Nil(t, jobs[1].StartDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateJob_DuplicateNumber(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`INSERT INTO dispatch.jobs`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), models.Job{JobNumber: "J-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateJob_DefaultsToPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepository(db)
	now := time.Now()
	start := models.NewDate(2024, time.July, 1)

	mock.ExpectQuery(`INSERT INTO dispatch.jobs`).
		WithArgs("J-9", "9 Elm", "Austin", "TX", "78701", nil, models.JobStatusPending, "2024-07-01", nil).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "created_at", "updated_at"}).AddRow(9, now, now))

	job, err := repo.Create(context.Background(), models.Job{
		JobNumber:     "J-9",
		StreetAddress: "9 Elm",
		City:          "Austin",
		State:         "TX",
		ZipCode:       "78701",
		StartDate:     &start,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJobStatus_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(`UPDATE dispatch.jobs`).
		WithArgs(models.JobStatusCancelled, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 42, models.JobStatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}
