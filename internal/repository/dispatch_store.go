package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stanstork/crewdispatch/internal/models"
)

// SlotStore is the view of the store used while filling one installer slot.
type SlotStore interface {
	FindCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	CreateAssignment(ctx context.Context, a models.NewAssignment) (models.InstallerAssignment, error)
	CountTradeAssignments(ctx context.Context, scheduleID int64, trade models.Trade) (int, error)
}

// DispatchStore groups the repositories the scheduling engine reads and
// writes during a batch.
type DispatchStore struct {
	db             *sql.DB
	serializeSlots bool

	jobs      JobRepository
	orders    PurchaseOrderRepository
	schedules ScheduleRepository
}

func NewDispatchStore(db *sql.DB, serializeSlots bool) *DispatchStore {
	return &DispatchStore{
		db:             db,
		serializeSlots: serializeSlots,
		jobs:           NewJobRepository(db),
		orders:         NewPurchaseOrderRepository(db),
		schedules:      NewScheduleRepository(db),
	}
}

func (s *DispatchStore) FindJobsNeedingSchedule(ctx context.Context, limit int) ([]models.UnscheduledJob, error) {
	return s.jobs.FindJobsNeedingSchedule(ctx, limit)
}

func (s *DispatchStore) CreateSchedule(ctx context.Context, ns models.NewSchedule) (models.JobSchedule, error) {
	return s.schedules.Create(ctx, ns)
}

func (s *DispatchStore) FindJobsNeedingAssignment(ctx context.Context, limit int) ([]models.AssignableJob, error) {
	return s.jobs.FindJobsNeedingAssignment(ctx, limit)
}

func (s *DispatchStore) ListPurchaseOrders(ctx context.Context, jobID int64) ([]models.PurchaseOrder, error) {
	return s.orders.ListByJob(ctx, jobID)
}

// WithSlot runs fn for one (date, trade) slot. With slot serialization on,
// fn runs inside a transaction holding an advisory lock on the pair, so the
// candidate read and the assignment insert of concurrent batches for the same
// date and trade cannot interleave.
func (s *DispatchStore) WithSlot(ctx context.Context, date models.Date, trade models.Trade, fn func(SlotStore) error) error {
	if !s.serializeSlots {
		return fn(slotStore{q: s.db})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin slot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slotLockKey(date, trade)); err != nil {
		return fmt.Errorf("failed to lock slot %s/%s: %w", date, trade, err)
	}
	if err := fn(slotStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot transaction: %w", err)
	}
	return nil
}

func slotLockKey(date models.Date, trade models.Trade) string {
	return "dispatch-slot:" + date.String() + ":" + string(trade)
}

type slotStore struct {
	q Querier
}

func (s slotStore) FindCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	return NewInstallerRepository(s.q).FindCandidates(ctx, filter)
}

func (s slotStore) CreateAssignment(ctx context.Context, a models.NewAssignment) (models.InstallerAssignment, error) {
	return NewAssignmentRepository(s.q).Create(ctx, a)
}

func (s slotStore) CountTradeAssignments(ctx context.Context, scheduleID int64, trade models.Trade) (int, error) {
	return NewAssignmentRepository(s.q).CountByScheduleTrade(ctx, scheduleID, trade)
}
