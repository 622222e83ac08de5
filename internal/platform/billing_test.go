package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLedger struct {
	credited map[string]int
	err      error
}

func (f *fakeLedger) Credit(ctx context.Context, userID string, n int) error {
	if f.err != nil {
		return f.err
	}
	if f.credited == nil {
		f.credited = map[string]int{}
	}
	f.credited[userID] += n
	return nil
}

type fakeIdempotentStore struct {
	alreadyProcessed bool
	err              error
}

func (f *fakeIdempotentStore) MarkProcessed(ctx context.Context, transactionID, userID string, credits int) (bool, error) {
	return f.alreadyProcessed, f.err
}

func TestCreditTopUpHandler_HandleIAPReceipt(t *testing.T) {
	t.Run("credits on first sight", func(t *testing.T) {
		ledger := &fakeLedger{}
		h := NewCreditTopUpHandler(ledger, &fakeIdempotentStore{})

		err := h.HandleIAPReceipt(context.Background(), IAPReceipt{TransactionID: "t1", UserID: "u1", Credits: 10})
		assert.NoError(t, err)
		assert.Equal(t, 10, ledger.credited["u1"])
	})

	t.Run("skips crediting on replay", func(t *testing.T) {
		ledger := &fakeLedger{}
		h := NewCreditTopUpHandler(ledger, &fakeIdempotentStore{alreadyProcessed: true})

		err := h.HandleIAPReceipt(context.Background(), IAPReceipt{TransactionID: "t1", UserID: "u1", Credits: 10})
		assert.NoError(t, err)
		assert.Zero(t, ledger.credited["u1"])
	})

	t.Run("rejects non-positive credits", func(t *testing.T) {
		h := NewCreditTopUpHandler(&fakeLedger{}, &fakeIdempotentStore{})

		err := h.HandleIAPReceipt(context.Background(), IAPReceipt{TransactionID: "t1", UserID: "u1", Credits: 0})
		assert.Error(t, err)
	})

	t.Run("propagates ledger error", func(t *testing.T) {
		ledger := &fakeLedger{err: errors.New("db down")}
		h := NewCreditTopUpHandler(ledger, &fakeIdempotentStore{})

		err := h.HandleIAPReceipt(context.Background(), IAPReceipt{TransactionID: "t1", UserID: "u1", Credits: 10})
		assert.Error(t, err)
	})
}
