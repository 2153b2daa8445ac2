package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type POStatus string

const (
	POStatusPending   POStatus = "pending"
	POStatusScheduled POStatus = "scheduled"
	POStatusCompleted POStatus = "completed"
	POStatusCancelled POStatus = "cancelled"
)

func (s POStatus) Valid() bool {
	switch s {
	case POStatusPending, POStatusScheduled, POStatusCompleted, POStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder carries material quantities for up to three trades.
type PurchaseOrder struct {
	ID             int64            `json:"poId" db:"po_id"`
	JobID          int64            `json:"jobId" db:"job_id"`
	PONumber       string           `json:"poNumber" db:"po_number"`
	TrimLinearFeet *decimal.Decimal `json:"trimLinearFeet" db:"trim_linear_feet"`
	StairRisers    *int             `json:"stairRisers" db:"stair_risers"`
	DoorCount      *int             `json:"doorCount" db:"door_count"`
	Status         POStatus         `json:"status" db:"status"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// HasWork reports whether at least one quantity is positive.
func (po PurchaseOrder) HasWork() bool {
	if po.TrimLinearFeet != nil && po.TrimLinearFeet.IsPositive() {
		return true
	}
	if po.StairRisers != nil && *po.StairRisers > 0 {
		return true
	}
	return po.DoorCount != nil && *po.DoorCount > 0
}
