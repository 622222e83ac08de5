package iaptopuprepo

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_MarkProcessed(t *testing.T) {
	t.Run("first delivery credits", func(t *testing.T) {
		repo, mock := NewMock(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processed_iap_transactions")).
			WithArgs("t1", "u1", 10).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		already, err := repo.MarkProcessed(context.Background(), "t1", "u1", 10)
		assert.NoError(t, err)
		assert.False(t, already)
	})

	t.Run("replay delivery is a no-op", func(t *testing.T) {
		repo, mock := NewMock(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processed_iap_transactions")).
			WithArgs("t1", "u1", 10).WillReturnResult(pgxmock.NewResult("INSERT", 0))

		already, err := repo.MarkProcessed(context.Background(), "t1", "u1", 10)
		assert.NoError(t, err)
		assert.True(t, already)
	})
}

func TestRepository_WasProcessed(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := NewMock(t)

		rows := pgxmock.NewRows([]string{"transaction_id"}).AddRow("t1")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT transaction_id FROM processed_iap_transactions WHERE transaction_id = $1")).
			WithArgs("t1").WillReturnRows(rows)

		ok, err := repo.WasProcessed(context.Background(), "t1")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := NewMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT transaction_id FROM processed_iap_transactions WHERE transaction_id = $1")).
			WithArgs("missing").WillReturnRows(pgxmock.NewRows([]string{"transaction_id"}))

		ok, err := repo.WasProcessed(context.Background(), "missing")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
