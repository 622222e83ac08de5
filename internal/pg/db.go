package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the thin subset of pgxpool.Pool every repository depends
// on, narrow enough to fake in repository unit tests without a live
// Postgres instance.
type Database interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type pool struct {
	*pgxpool.Pool
}

// New wraps a *pgxpool.Pool as a Database. Calls made while the context
// carries a transaction started by TXManager.Begin are routed onto that
// transaction instead of a fresh pool connection, so repositories can
// take row-level locks (e.g. the credit ledger's SELECT ... FOR UPDATE)
// that must be visible to the statements that follow inside the same
// Begin closure.
func New(p *pgxpool.Pool) Database {
	return &pool{p}
}

func (p *pool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.QueryRow(ctx, sql, args...)
	}
	return p.Pool.QueryRow(ctx, sql, args...)
}

func (p *pool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.Query(ctx, sql, args...)
	}
	return p.Pool.Query(ctx, sql, args...)
}

func (p *pool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.Exec(ctx, sql, args...)
	}
	return p.Pool.Exec(ctx, sql, args...)
}

// TXManager runs fn inside a transaction, committing on success and
// rolling back on any error fn returns, mirroring the teacher's
// pg.TXManager.Begin(ctx, func(ctx) error) shape used throughout the
// repo layer.
type TXManager interface {
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type txManager struct {
	pool *pgxpool.Pool
}

// NewTXManager builds a TXManager bound to pool.
func NewTXManager(p *pgxpool.Pool) TXManager {
	return &txManager{pool: p}
}

func (m *txManager) Begin(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ctx = context.WithValue(ctx, txKey{}, tx)
	if err := fn(ctx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TxFromContext returns the transaction started by TXManager.Begin, if
// any, so Database implementations can route statements onto it.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}
