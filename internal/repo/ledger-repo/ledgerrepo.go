// Package ledgerrepo implements the Credit Ledger (C1): a per-user
// integer credit balance with transactional debit/credit, guarded by a
// row-level lock so concurrent debits and credits on the same user
// serialize (spec §4.1, §5 "shared-resource policy").
package ledgerrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

// TryDebit atomically decrements the user's balance by n if it is at
// least n, returning false without any side effect otherwise. It
// returns domain.ErrUserNotFound only when the user row itself does
// not exist; any other store error leaves the balance untouched.
func (r *Repository) TryDebit(ctx context.Context, userID string, n int) (bool, error) {
	ok := false
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var current int
		row := r.db.QueryRow(ctx, `SELECT credits FROM credit_ledger WHERE user_id = $1 FOR UPDATE`, userID)
		if err := row.Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			zap.L().Error("can't lock credit ledger row", zap.Error(err))
			return err
		}
		if current < n {
			return nil
		}
		if _, err := r.db.Exec(ctx, `UPDATE credit_ledger SET credits = credits - $1 WHERE user_id = $2`, n, userID); err != nil {
			zap.L().Error("can't debit credits", zap.Error(err))
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Credit atomically increments the user's balance by n. It never fails
// for an insufficient-balance reason; it only errors when the user does
// not exist or the underlying store fails.
func (r *Repository) Credit(ctx context.Context, userID string, n int) error {
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `UPDATE credit_ledger SET credits = credits + $1 WHERE user_id = $2`, n, userID)
		if err != nil {
			zap.L().Error("can't credit ledger", zap.Error(err))
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// Get is a read-only lookup; it is weaker-consistency than TryDebit and
// Credit by design (spec §4.1) and must not take a row lock.
func (r *Repository) Get(ctx context.Context, userID string) (int, error) {
	var credits int
	row := r.db.QueryRow(ctx, `SELECT credits FROM credit_ledger WHERE user_id = $1`, userID)
	if err := row.Scan(&credits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		zap.L().Error("can't read credit ledger", zap.Error(err))
		return 0, err
	}
	return credits, nil
}

// Seed inserts the initial credit_ledger row for a newly created user,
// used by the identity subsystem (out of core) immediately after phone
// verification succeeds.
func (r *Repository) Seed(ctx context.Context, userID string, initial int) error {
	_, err := r.db.Exec(ctx, `INSERT INTO credit_ledger (user_id, credits) VALUES ($1, $2)`, userID, initial)
	if err != nil {
		zap.L().Error("can't seed credit ledger", zap.Error(err))
		return err
	}
	return nil
}
