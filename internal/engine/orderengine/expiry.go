package orderengine

import (
	"context"

	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/events"
)

// HandleExpiry implements spec §4.5.4: an idempotent ACTIVE→EXPIRED
// transition triggered by the Expiry Watcher's keyspace notification,
// refunding CreditCostPerAction to every participant in the pledge map
// (the pledged amounts themselves are not credits and are not refunded).
func (e *Engine) HandleExpiry(ctx context.Context, orderID string) {
	order, err := e.store.Get(ctx, orderID)
	if err != nil {
		zap.L().Error("handleExpiry: can't load order", zap.String("orderId", orderID), zap.Error(err))
		return
	}
	if order == nil {
		zap.L().Warn("handleExpiry: order not found, cache fired for a stale key", zap.String("orderId", orderID))
		return
	}
	if order.Status != domain.OrderActive {
		// already terminal — a completion raced the expiry notification,
		// or this handler already ran for this order. Idempotent no-op.
		return
	}

	if err := e.store.SetStatus(ctx, orderID, domain.OrderExpired); err != nil {
		zap.L().Error("handleExpiry: can't set status", zap.String("orderId", orderID), zap.Error(err))
		return
	}

	for participantID := range order.PledgeMap {
		if err := e.ledger.Credit(ctx, participantID, e.cfg.CreditCostPerAction); err != nil {
			zap.L().Error("handleExpiry: can't refund participant",
				zap.String("orderId", orderID), zap.String("userId", participantID), zap.Error(err))
		}
	}

	order.Status = domain.OrderExpired
	e.events.Post(events.Event{Kind: events.OrderExpired, Order: order})
}

// Reconcile implements spec §4.5.6's boot-time self-healing pass: since
// expires_at is never persisted (spec §3, "implicit via cache TTL"), an
// order that is ACTIVE in the durable store but absent from the live
// cache can only mean its deadline already passed — including the
// crash window between the store insert and the cache write in
// CreateOrder. Presence in the cache means the deadline has not yet
// passed and no action is needed; the watcher will fire in its own time.
func (e *Engine) Reconcile(ctx context.Context) error {
	active, err := e.store.FindActive(ctx)
	if err != nil {
		return err
	}

	for _, order := range active {
		cached, err := e.cache.Get(ctx, order.ID)
		if err != nil {
			zap.L().Error("reconcile: can't read cache", zap.String("orderId", order.ID), zap.Error(err))
			continue
		}
		if cached == nil {
			zap.L().Info("reconcile: expiring stranded order", zap.String("orderId", order.ID))
			e.HandleExpiry(ctx, order.ID)
		}
	}

	return nil
}
