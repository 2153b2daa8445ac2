package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stanstork/crewdispatch/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrInvalidReference = errors.New("invalid reference")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// classify maps driver errors onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Message)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Message)
		}
	}
	return err
}

// withTx runs fn in a new transaction when q is a *sql.DB, or directly on q
// when the caller already owns a transaction.
func withTx(ctx context.Context, q Querier, fn func(Querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullStringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullDatePtr(n sql.NullTime) *models.Date {
	if !n.Valid {
		return nil
	}
	d := models.DateOf(n.Time)
	return &d
}

func nullDecimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}

func int64Arg(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intArg(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func stringArg(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func dateArg(v *models.Date) interface{} {
	if v == nil {
		return nil
	}
	return v.String()
}

func decimalArg(v *decimal.Decimal) interface{} {
	if v == nil {
		return nil
	}
	return v.String()
}

func optionalString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
