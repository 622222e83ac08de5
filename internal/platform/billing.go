package platform

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// IAPReceipt is the webhook payload from the in-app-purchase platform.
type IAPReceipt struct {
	TransactionID string
	UserID        string
	Credits       int
}

// CreditTopUpWebhook credits C1 on first sight of a transaction id and
// no-ops on replay delivery.
type CreditTopUpWebhook interface {
	HandleIAPReceipt(ctx context.Context, payload IAPReceipt) error
}

// Ledger is the narrow C1 slice the webhook needs.
type Ledger interface {
	Credit(ctx context.Context, userID string, n int) error
}

// IdempotentStore is the narrow replay-guard slice the webhook needs,
// satisfied by iaptopuprepo.Repository.
type IdempotentStore interface {
	MarkProcessed(ctx context.Context, transactionID, userID string, credits int) (alreadyProcessed bool, err error)
}

type CreditTopUpHandler struct {
	ledger Ledger
	store  IdempotentStore
}

func NewCreditTopUpHandler(ledger Ledger, store IdempotentStore) *CreditTopUpHandler {
	return &CreditTopUpHandler{ledger: ledger, store: store}
}

func (h *CreditTopUpHandler) HandleIAPReceipt(ctx context.Context, payload IAPReceipt) error {
	if payload.Credits <= 0 {
		return fmt.Errorf("iap receipt %s: non-positive credits", payload.TransactionID)
	}

	alreadyProcessed, err := h.store.MarkProcessed(ctx, payload.TransactionID, payload.UserID, payload.Credits)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if alreadyProcessed {
		zap.L().Info("iap receipt replay, skipping credit", zap.String("transactionId", payload.TransactionID))
		return nil
	}

	if err := h.ledger.Credit(ctx, payload.UserID, payload.Credits); err != nil {
		return fmt.Errorf("credit ledger: %w", err)
	}
	return nil
}
