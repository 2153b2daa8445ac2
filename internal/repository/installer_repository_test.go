package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCandidateQuery_Minimal(t *testing.T) {
	query, args := buildCandidateQuery(models.CandidateFilter{Trade: models.TradeTrim, IsActive: true})

	assert.Contains(t, query, "JOIN dispatch.installer_locations il")
	assert.Contains(t, query, "i.trade = $1")
	assert.Contains(t, query, "i.is_active = $2")
	assert.NotContains(t, query, "il.location_id =")
	assert.NotContains(t, query, "NOT IN")
	assert.NotContains(t, query, "ANY(")
	assert.Contains(t, query, "ORDER BY i.installer_id")
	assert.Equal(t, []interface{}{models.TradeTrim, true}, args)
}

func TestBuildCandidateQuery_AllFilters(t *testing.T) {
	loc := int64(7)
	date := models.NewDate(2024, time.March, 4)
	query, args := buildCandidateQuery(models.CandidateFilter{
		Trade:               models.TradeStairs,
		IsActive:            true,
		LocationID:          &loc,
		ExcludeDate:         &date,
		ExcludeInstallerIDs: []int64{3, 9},
	})

	assert.Contains(t, query, "il.location_id = $3")
	assert.Contains(t, query, "NOT (i.installer_id = ANY($4))")
	assert.Contains(t, query, "js.scheduled_date = $5")
	// the exclusion subquery reuses the trade placeholder
	assert.Contains(t, query, "ai.trade = $1")
	require.Len(t, args, 5)
	assert.Equal(t, models.TradeStairs, args[0])
	assert.Equal(t, int64(7), args[2])
	assert.Equal(t, pq.Array([]int64{3, 9}), args[3])
	assert.Equal(t, "2024-03-04", args[4])
}

func TestFindCandidates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)

	loc := int64(2)
	rows := sqlmock.NewRows([]string{"installer_id", "first_name", "last_name"}).
		AddRow(1, "Ann", "Lee").
		AddRow(4, "Bo", "Diaz")
	mock.ExpectQuery(`SELECT DISTINCT i.installer_id`).
		WithArgs(models.TradeDoors, true, loc).
		WillReturnRows(rows)

	candidates, err := repo.FindCandidates(context.Background(), models.CandidateFilter{
		Trade:      models.TradeDoors,
		IsActive:   true,
		LocationID: &loc,
	})

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, int64(1), candidates[0].ID)
	assert.Equal(t, "Bo Diaz", candidates[1].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCandidates_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT i.installer_id`).
		WithArgs(models.TradeTrim, true).
		WillReturnRows(sqlmock.NewRows([]string{"installer_id", "first_name", "last_name"}))

	candidates, err := repo.FindCandidates(context.Background(), models.CandidateFilter{Trade: models.TradeTrim, IsActive: true})
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInstaller_WithLocations(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO dispatch.installers`).
		WithArgs("Ann", "Lee", models.TradeTrim, nil, nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"installer_id", "created_at", "updated_at"}).AddRow(11, now, now))
	mock.ExpectExec(`INSERT INTO dispatch.installer_locations`).
		WithArgs(int64(11), pq.Array([]int64{1, 2})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	installer, err := repo.Create(context.Background(), models.Installer{
		FirstName:   " Ann ",
		LastName:    "Lee",
		Trade:       models.TradeTrim,
		IsActive:    true,
		LocationIDs: []int64{1, 2},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), installer.ID)
	assert.Equal(t, []int64{1, 2}, installer.LocationIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInstaller_UnknownLocationRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO dispatch.installers`).
		WillReturnRows(sqlmock.NewRows([]string{"installer_id", "created_at", "updated_at"}).AddRow(11, now, now))
	mock.ExpectExec(`INSERT INTO dispatch.installer_locations`).
		WillReturnError(&pq.Error{Code: "23503", Message: "location missing"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.Installer{
		FirstName: "Ann", LastName: "Lee", Trade: models.TradeTrim, IsActive: true, LocationIDs: []int64{99},
	})

	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInstaller(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"installer_id", "first_name", "last_name", "trade", "phone", "email", "is_active",
		"location_ids", "created_at", "updated_at",
	}).AddRow(3, "Cy", "Park", "stairs", "555-0100", nil, false, "{4,5}", now, now)
	mock.ExpectQuery(`FROM dispatch.installers i`).WithArgs(int64(3)).WillReturnRows(rows)

	installer, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStairs, installer.Trade)
	require.NotNil(t, installer.Phone)
	assert.Equal(t, "555-0100", *installer.Phone)
	assert.Nil(t, installer.Email)
	assert.False(t, installer.IsActive)
	assert.Equal(t, []int64{4, 5}, installer.LocationIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInstaller_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)

	mock.ExpectQuery(`FROM dispatch.installers i`).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetActive_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)

	mock.ExpectExec(`UPDATE dispatch.installers`).
		WithArgs(false, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.SetActive(context.Background(), 8, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInstallers_Filters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)
	active := true

	mock.ExpectQuery(`WHERE i.trade = \$1 AND i.is_active = \$2`).
		WithArgs(models.TradeDoors, true).
		WillReturnRows(sqlmock.NewRows([]string{
			"installer_id", "first_name", "last_name", "trade", "phone", "email", "is_active",
			"location_ids", "created_at", "updated_at",
		}))

	installers, err := repo.List(context.Background(), InstallerListFilter{Trade: models.TradeDoors, Active: &active})
	require.NoError(t, err)
	assert.Empty(t, installers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetLocations(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInstallerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM dispatch.installer_locations`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO dispatch.installer_locations`).
		WithArgs(int64(5), pq.Array([]int64{3})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetLocations(context.Background(), 5, []int64{3}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
