// Package orderrepo implements the Order Store (C2): the authoritative
// record of orders and their terminal state (spec §4.2).
package orderrepo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

// Insert creates the row in ACTIVE state with order's (possibly
// non-empty, for initialPledge) pledge_map.
func (r *Repository) Insert(ctx context.Context, order *domain.Order) error {
	pledgeJSON, err := marshalPledgeMap(order.PledgeMap)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO orders (id, status, creator_id, amount_needed, pledge_map, total_pledge, total_users, platform, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query,
			order.ID, order.Status, order.CreatorID, order.AmountNeeded, pledgeJSON,
			order.TotalPledge, order.TotalUsers, order.Platform, order.Latitude, order.Longitude)
		if err := row.Scan(&order.CreatedAt); err != nil {
			zap.L().Error("can't insert order", zap.Error(err))
			return err
		}
		return nil
	})
}

// UpdatePledge replaces the mutable fields after a successful scripted
// pledge (spec §4.5.2 step 4). Last-writer-wins is acceptable here
// because all concurrent mutations are already serialized by C3's
// scripted pledge.
func (r *Repository) UpdatePledge(ctx context.Context, orderID string, pledgeMap map[string]decimal.Decimal, totalPledge decimal.Decimal, totalUsers int, status domain.OrderStatus) error {
	pledgeJSON, err := marshalPledgeMap(pledgeMap)
	if err != nil {
		return err
	}
	query := `
        UPDATE orders
        SET pledge_map = $1, total_pledge = $2, total_users = $3, status = $4
        WHERE id = $5
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, query, pledgeJSON, totalPledge, totalUsers, status, orderID); err != nil {
			zap.L().Error("failed to update order pledge", zap.Error(err))
			return err
		}
		return nil
	})
}

// SetStatus transitions an order's status, used by handleExpiry's
// ACTIVE->EXPIRED gate.
func (r *Repository) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, orderID); err != nil {
			zap.L().Error("failed to set order status", zap.Error(err))
			return err
		}
		return nil
	})
}

// Get returns nil, nil if the order does not exist.
func (r *Repository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
        SELECT id, status, creator_id, amount_needed, pledge_map, total_pledge, total_users, platform, latitude, longitude, created_at
        FROM orders
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, query, orderID)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

// FindActive returns every order still ACTIVE in the durable store,
// used by the engine's boot-time reconciliation scan (spec §5).
func (r *Repository) FindActive(ctx context.Context) ([]*domain.Order, error) {
	query := `
        SELECT id, status, creator_id, amount_needed, pledge_map, total_pledge, total_users, platform, latitude, longitude, created_at
        FROM orders
        WHERE status = $1
    `
	rows, err := r.db.Query(ctx, query, domain.OrderActive)
	if err != nil {
		zap.L().Error("can't list active orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrderRows(rows)
		if err != nil {
			zap.L().Error("can't scan active order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	return scanRow(row)
}

func scanOrderRows(row scanner) (*domain.Order, error) {
	return scanRow(row)
}

func scanRow(row scanner) (*domain.Order, error) {
	var order domain.Order
	var pledgeJSON []byte
	if err := row.Scan(
		&order.ID, &order.Status, &order.CreatorID, &order.AmountNeeded, &pledgeJSON,
		&order.TotalPledge, &order.TotalUsers, &order.Platform, &order.Latitude, &order.Longitude, &order.CreatedAt,
	); err != nil {
		return nil, err
	}
	pledgeMap, err := unmarshalPledgeMap(pledgeJSON)
	if err != nil {
		return nil, err
	}
	order.PledgeMap = pledgeMap
	return &order, nil
}

func marshalPledgeMap(m map[string]decimal.Decimal) ([]byte, error) {
	if m == nil {
		m = map[string]decimal.Decimal{}
	}
	return json.Marshal(m)
}

func unmarshalPledgeMap(b []byte) (map[string]decimal.Decimal, error) {
	m := map[string]decimal.Decimal{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
