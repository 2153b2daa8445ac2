package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stanstork/crewdispatch/internal/models"
)

type PurchaseOrderFilter struct {
	JobID  *int64
	Status models.POStatus
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po models.PurchaseOrder) (models.PurchaseOrder, error)
	ListByJob(ctx context.Context, jobID int64) ([]models.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter) ([]models.PurchaseOrder, error)
}

type purchaseOrderRepository struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) PurchaseOrderRepository {
	return &purchaseOrderRepository{q: q}
}

const poColumns = `
	po_id, job_id, po_number, trim_linear_feet, stair_risers, door_count,
	status, created_at, updated_at`

func (r *purchaseOrderRepository) Create(ctx context.Context, po models.PurchaseOrder) (models.PurchaseOrder, error) {
	if po.Status == "" {
		po.Status = models.POStatusPending
	}
	const query = `
		INSERT INTO dispatch.purchase_orders (job_id, po_number, trim_linear_feet, stair_risers, door_count, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING po_id, created_at, updated_at
	`
	po.PONumber = strings.TrimSpace(po.PONumber)
	err := r.q.QueryRowContext(ctx, query,
		po.JobID,
		po.PONumber,
		decimalArg(po.TrimLinearFeet),
		intArg(po.StairRisers),
		intArg(po.DoorCount),
		po.Status,
	).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return models.PurchaseOrder{}, classify(err)
	}
	return po, nil
}

// ListByJob returns every purchase order of a job ordered by po_id. The
// order matters: the lowest id of a trade picks its installers.
func (r *purchaseOrderRepository) ListByJob(ctx context.Context, jobID int64) ([]models.PurchaseOrder, error) {
	jobIDArg := jobID
	return r.List(ctx, PurchaseOrderFilter{JobID: &jobIDArg})
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter) ([]models.PurchaseOrder, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.JobID != nil {
		args = append(args, *filter.JobID)
		conds = append(conds, fmt.Sprintf("job_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + poColumns + ` FROM dispatch.purchase_orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY po_id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	orders := []models.PurchaseOrder{}
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

func scanPurchaseOrder(scanner rowScanner) (models.PurchaseOrder, error) {
	var (
		po     models.PurchaseOrder
		trim   decimal.NullDecimal
		risers sql.NullInt64
		doors  sql.NullInt64
	)
	if err := scanner.Scan(
		&po.ID,
		&po.JobID,
		&po.PONumber,
		&trim,
		&risers,
		&doors,
		&po.Status,
		&po.CreatedAt,
		&po.UpdatedAt,
	); err != nil {
		return models.PurchaseOrder{}, err
	}
	po.TrimLinearFeet = nullDecimalPtr(trim)
	po.StairRisers = nullIntPtr(risers)
	po.DoorCount = nullIntPtr(doors)
	return po, nil
}
