package orderrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bundl/bundl/internal/domain"
)

// fakeTXManager runs fn directly against the ambient context. A second,
// error-injecting variant lets tests exercise the transaction-failure path
// without a real gomock-generated mock.
type fakeTXManager struct{ err error }

func (f fakeTXManager) Begin(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, fakeTXManager{})
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:           "ord-1",
		Status:       domain.OrderActive,
		CreatorID:    "u1",
		AmountNeeded: decimal.NewFromInt(100),
		PledgeMap:    map[string]decimal.Decimal{"u1": decimal.NewFromInt(10)},
		TotalPledge:  decimal.NewFromInt(10),
		TotalUsers:   1,
		Platform:     "amazon",
		Latitude:     decimal.NewFromFloat(37.77),
		Longitude:    decimal.NewFromFloat(-122.42),
	}
}

func TestRepository_Insert(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := NewMock(t)
		order := sampleOrder()

		rows := pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now())
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(order.ID, order.Status, order.CreatorID, order.AmountNeeded, pgxmock.AnyArg(),
				order.TotalPledge, order.TotalUsers, order.Platform, order.Latitude, order.Longitude).
			WillReturnRows(rows)

		err := repo.Insert(context.Background(), order)
		assert.NoError(t, err)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := NewMock(t)
		order := sampleOrder()

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(order.ID, order.Status, order.CreatorID, order.AmountNeeded, pgxmock.AnyArg(),
				order.TotalPledge, order.TotalUsers, order.Platform, order.Latitude, order.Longitude).
			WillReturnError(errors.New("db down"))

		err := repo.Insert(context.Background(), order)
		assert.Error(t, err)
	})

	t.Run("transaction rejected", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		assert.NoError(t, err)
		defer mockDB.Close()
		repo := New(mockDB, fakeTXManager{err: errors.New("tx aborted")})

		err = repo.Insert(context.Background(), sampleOrder())
		assert.Error(t, err)
	})
}

func TestRepository_UpdatePledge(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders")).
		WithArgs(pgxmock.AnyArg(), decimal.NewFromInt(50), 2, domain.OrderCompleted, "ord-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePledge(context.Background(), "ord-1",
		map[string]decimal.Decimal{"u1": decimal.NewFromInt(50)}, decimal.NewFromInt(50), 2, domain.OrderCompleted)
	assert.NoError(t, err)
}

func TestRepository_SetStatus(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2")).
		WithArgs(domain.OrderExpired, "ord-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetStatus(context.Background(), "ord-1", domain.OrderExpired)
	assert.NoError(t, err)
}

func TestRepository_Get(t *testing.T) {
	repo, mock := NewMock(t)

	cols := []string{"id", "status", "creator_id", "amount_needed", "pledge_map", "total_pledge", "total_users", "platform", "latitude", "longitude", "created_at"}

	t.Run("found", func(t *testing.T) {
		rows := pgxmock.NewRows(cols).AddRow(
			"ord-1", domain.OrderActive, "u1", decimal.NewFromInt(100), []byte(`{"u1":"10"}`),
			decimal.NewFromInt(10), 1, "amazon", decimal.NewFromFloat(37.77), decimal.NewFromFloat(-122.42), time.Now())
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, creator_id, amount_needed, pledge_map, total_pledge, total_users, platform, latitude, longitude, created_at")).
			WithArgs("ord-1").WillReturnRows(rows)

		order, err := repo.Get(context.Background(), "ord-1")
		assert.NoError(t, err)
		assert.Equal(t, "ord-1", order.ID)
		assert.Equal(t, domain.OrderActive, order.Status)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, creator_id, amount_needed, pledge_map, total_pledge, total_users, platform, latitude, longitude, created_at")).
			WithArgs("missing").WillReturnRows(pgxmock.NewRows(cols))

		order, err := repo.Get(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, order)
	})
}

func TestRepository_FindActive(t *testing.T) {
	repo, mock := NewMock(t)

	cols := []string{"id", "status", "creator_id", "amount_needed", "pledge_map", "total_pledge", "total_users", "platform", "latitude", "longitude", "created_at"}
	rows := pgxmock.NewRows(cols).
		AddRow("ord-1", domain.OrderActive, "u1", decimal.NewFromInt(100), []byte(`{}`),
			decimal.NewFromInt(0), 0, "amazon", decimal.NewFromFloat(1), decimal.NewFromFloat(1), time.Now()).
		AddRow("ord-2", domain.OrderActive, "u2", decimal.NewFromInt(200), []byte(`{}`),
			decimal.NewFromInt(0), 0, "walmart", decimal.NewFromFloat(2), decimal.NewFromFloat(2), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1")).
		WithArgs(domain.OrderActive).WillReturnRows(rows)

	orders, err := repo.FindActive(context.Background())
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
}
