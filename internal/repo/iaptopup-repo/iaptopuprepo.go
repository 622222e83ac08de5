// Package iaptopuprepo records processed in-app-purchase credit top-up
// webhooks, giving the idempotent CreditTopUpWebhook collaborator
// (spec §1 "Out of scope", SPEC_FULL.md §4.7) a durable replay guard:
// a transaction_id is credited at most once.
package iaptopuprepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

// MarkProcessed inserts the transaction record if it is not already
// present, returning alreadyProcessed=true when a replay is detected so
// the caller can skip crediting again. Idempotency rests entirely on
// the transaction_id primary key: a second webhook delivery for the
// same id affects zero rows and is reported as already processed.
func (r *Repository) MarkProcessed(ctx context.Context, transactionID, userID string, credits int) (alreadyProcessed bool, err error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO processed_iap_transactions (transaction_id, user_id, credits)
        VALUES ($1, $2, $3)
        ON CONFLICT (transaction_id) DO NOTHING
    `, transactionID, userID, credits)
	if err != nil {
		zap.L().Error("can't record iap transaction", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 0, nil
}

func (r *Repository) WasProcessed(ctx context.Context, transactionID string) (bool, error) {
	var id string
	row := r.db.QueryRow(ctx, `SELECT transaction_id FROM processed_iap_transactions WHERE transaction_id = $1`, transactionID)
	err := row.Scan(&id)
	if err != nil {
		return false, nil
	}
	return id != "", nil
}
