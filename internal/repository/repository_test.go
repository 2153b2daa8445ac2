package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.ErrorIs(t, classify(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, classify(&pq.Error{Code: "23505", Message: "dup"}), ErrDuplicate)
	assert.ErrorIs(t, classify(&pq.Error{Code: "23503", Message: "fk"}), ErrInvalidReference)

	other := &pq.Error{Code: "42P01"}
	assert.Equal(t, error(other), classify(other))
}
