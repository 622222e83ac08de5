// Package ledgerengine wraps the Credit Ledger (C1) behind the narrow
// interface the Order Engine (C5) depends on, the same shape as the
// teacher's balanceservice wrapping balance-repo.
package ledgerengine

import (
	"context"

	"go.uber.org/zap"
)

// Repo is satisfied by ledgerrepo.Repository.
type Repo interface {
	TryDebit(ctx context.Context, userID string, n int) (bool, error)
	Credit(ctx context.Context, userID string, n int) error
	Get(ctx context.Context, userID string) (int, error)
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) TryDebit(ctx context.Context, userID string, n int) (bool, error) {
	ok, err := s.repo.TryDebit(ctx, userID, n)
	if err != nil {
		zap.L().Error("try-debit failed", zap.String("userId", userID), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// Credit is used both by the expiry refund fan-out and by the
// CreditTopUpWebhook collaborator. Per-user failures here are logged
// by the caller so one bad row never aborts a fan-out (spec §4.5.5
// step 4).
func (s *Service) Credit(ctx context.Context, userID string, n int) error {
	if err := s.repo.Credit(ctx, userID, n); err != nil {
		zap.L().Error("credit failed", zap.String("userId", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID string) (int, error) {
	return s.repo.Get(ctx, userID)
}
