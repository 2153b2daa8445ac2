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

func TestCreateSchedule_MarksJobScheduled(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewScheduleRepository(db)
	date := models.NewDate(2024, time.August, 5)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO dispatch.job_schedules`).
		WithArgs(int64(4), "2024-08-05", nil).
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id", "job_id", "scheduled_date", "status", "notes", "created_at"}).
			AddRow(20, 4, date.Time, "scheduled", nil, now))
	mock.ExpectExec(`UPDATE dispatch.jobs\s+SET status = 'scheduled'`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	schedule, err := repo.Create(context.Background(), models.NewSchedule{JobID: 4, ScheduledDate: date})
	require.NoError(t, err)
	assert.Equal(t, int64(20), schedule.ID)
	assert.True(t, schedule.ScheduledDate.Equal(date))
	assert.Equal(t, models.ScheduleStatusScheduled, schedule.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchedule_DuplicateRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO dispatch.job_schedules`).
		WillReturnError(&pq.Error{Code: "23505", Message: "schedule_job_date_unique"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.NewSchedule{
		JobID:         4,
		ScheduledDate: models.NewDate(2024, time.August, 5),
		Notes:         "auto",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
