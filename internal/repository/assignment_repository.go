package repository

import (
	"context"
	"database/sql"

	"github.com/stanstork/crewdispatch/internal/models"
)

type AssignmentRepository interface {
	// Create fails with ErrDuplicate when the (schedule, installer, po)
	// triple exists and ErrInvalidReference when any referenced row is gone.
	Create(ctx context.Context, a models.NewAssignment) (models.InstallerAssignment, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]models.InstallerAssignment, error)
	// CountByScheduleTrade counts the schedule's assignments held by
	// installers of the given trade.
	CountByScheduleTrade(ctx context.Context, scheduleID int64, trade models.Trade) (int, error)
}

type assignmentRepository struct {
	q Querier
}

func NewAssignmentRepository(q Querier) AssignmentRepository {
	return &assignmentRepository{q: q}
}

func (r *assignmentRepository) Create(ctx context.Context, a models.NewAssignment) (models.InstallerAssignment, error) {
	const query = `
		INSERT INTO dispatch.installer_assignments (schedule_id, installer_id, po_id, assignment_status, notes)
		VALUES ($1, $2, $3, 'assigned', $4)
		RETURNING assignment_id, schedule_id, installer_id, po_id, assignment_status, notes, created_at
	`
	assignment, err := scanAssignment(r.q.QueryRowContext(ctx, query,
		a.ScheduleID, a.InstallerID, a.POID, optionalString(a.Notes)))
	if err != nil {
		return models.InstallerAssignment{}, classify(err)
	}
	return assignment, nil
}

func (r *assignmentRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]models.InstallerAssignment, error) {
	const query = `
		SELECT assignment_id, schedule_id, installer_id, po_id, assignment_status, notes, created_at
		FROM dispatch.installer_assignments
		WHERE schedule_id = $1
		ORDER BY assignment_id
	`
	rows, err := r.q.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.InstallerAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *assignmentRepository) CountByScheduleTrade(ctx context.Context, scheduleID int64, trade models.Trade) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM dispatch.installer_assignments ia
		JOIN dispatch.installers i ON i.installer_id = ia.installer_id
		WHERE ia.schedule_id = $1 AND i.trade = $2
	`
	var n int
	if err := r.q.QueryRowContext(ctx, query, scheduleID, trade).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanAssignment(scanner rowScanner) (models.InstallerAssignment, error) {
	var (
		a     models.InstallerAssignment
		notes sql.NullString
	)
	if err := scanner.Scan(&a.ID, &a.ScheduleID, &a.InstallerID, &a.POID, &a.Status, &notes, &a.CreatedAt); err != nil {
		return models.InstallerAssignment{}, err
	}
	a.Notes = nullStringPtr(notes)
	return a, nil
}
