package orderengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/events"
)

// CreateOrderInput mirrors the createOrder HTTP body (spec §6).
type CreateOrderInput struct {
	AmountNeeded  decimal.Decimal
	Platform      string
	Latitude      decimal.Decimal
	Longitude     decimal.Decimal
	InitialPledge decimal.Decimal
	TTLSeconds    int
}

// CreateOrder implements spec §4.5.1.
func (e *Engine) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*domain.Order, error) {
	if err := e.validateCreate(in); err != nil {
		return nil, err
	}

	ok, err := e.ledger.TryDebit(ctx, userID, e.cfg.CreditCostPerAction)
	if err != nil {
		return nil, fmt.Errorf("try debit: %w", err)
	}
	if !ok {
		return nil, domain.ErrInsufficientCredits
	}

	order := &domain.Order{
		ID:           uuid.New().String(),
		Status:       domain.OrderActive,
		CreatorID:    userID,
		AmountNeeded: in.AmountNeeded,
		PledgeMap:    map[string]decimal.Decimal{},
		TotalPledge:  decimal.Zero,
		TotalUsers:   0,
		Platform:     in.Platform,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
	}
	if in.InitialPledge.IsPositive() {
		order.PledgeMap[userID] = in.InitialPledge
		order.TotalPledge = in.InitialPledge
		order.TotalUsers = 1
	}

	if err := e.store.Insert(ctx, order); err != nil {
		e.refundAfterFailure(context.WithoutCancel(ctx), userID, "createOrder: insert failed")
		return nil, fmt.Errorf("insert order: %w", err)
	}

	ttl := e.ttlFor(in.TTLSeconds)
	if err := e.cache.Create(ctx, order, ttl); err != nil {
		e.refundAfterFailure(context.WithoutCancel(ctx), userID, "createOrder: cache write failed")
		return nil, fmt.Errorf("cache order: %w", err)
	}
	order.ExpiresAt = time.Now().Add(ttl)

	e.events.Post(events.Event{Kind: events.OrderCreated, Order: order, UserID: userID})

	return order, nil
}

func (e *Engine) ttlFor(ttlSeconds int) time.Duration {
	if ttlSeconds <= 0 {
		return e.cfg.DefaultOrderExpiry
	}
	return time.Duration(ttlSeconds) * time.Second
}

func (e *Engine) validateCreate(in CreateOrderInput) error {
	minAmount := decimal.NewFromFloat(e.cfg.OrderMinAmount)
	if in.AmountNeeded.LessThan(minAmount) {
		return fmt.Errorf("%w: amountNeeded below minimum", domain.ErrValidation)
	}
	if in.InitialPledge.IsNegative() {
		return fmt.Errorf("%w: initialPledge cannot be negative", domain.ErrValidation)
	}
	if in.InitialPledge.IsPositive() {
		minPledge := decimal.NewFromFloat(e.cfg.PledgeMinAmount)
		if in.InitialPledge.LessThan(minPledge) {
			return fmt.Errorf("%w: initialPledge below minimum", domain.ErrValidation)
		}
	}
	return nil
}

// refundAfterFailure restores the step-1 credit on every failure path
// between the debit and the durable commit (spec §4.5.1 step 7, I2).
// It runs with a context detached from the caller's cancellation so a
// client disconnect cannot itself suppress the refund.
func (e *Engine) refundAfterFailure(ctx context.Context, userID, reason string) {
	if err := e.ledger.Credit(ctx, userID, e.cfg.CreditCostPerAction); err != nil {
		zap.L().Error("failed to refund credit after failed action",
			zap.String("userId", userID), zap.String("reason", reason), zap.Error(err))
	}
}
