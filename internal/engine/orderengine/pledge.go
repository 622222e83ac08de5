package orderengine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/events"
)

// PledgeResult is the outcome the HTTP surface reports back to the caller.
type PledgeResult struct {
	Order               *domain.Order
	TransitionedToComplete bool
}

// PledgeToOrder implements spec §4.5.3 / §4.3's scripted atomic pledge.
func (e *Engine) PledgeToOrder(ctx context.Context, userID, orderID string, amount decimal.Decimal) (*PledgeResult, error) {
	minPledge := decimal.NewFromFloat(e.cfg.PledgeMinAmount)
	if amount.LessThan(minPledge) {
		return nil, fmt.Errorf("%w: pledge below minimum", domain.ErrValidation)
	}

	ok, err := e.ledger.TryDebit(ctx, userID, e.cfg.CreditCostPerAction)
	if err != nil {
		return nil, fmt.Errorf("try debit: %w", err)
	}
	if !ok {
		return nil, domain.ErrInsufficientCredits
	}

	res, err := e.cache.Pledge(ctx, orderID, userID, amount, e.cfg.DefaultOrderExpiry)
	if err != nil {
		e.refundAfterFailure(context.WithoutCancel(ctx), userID, "pledgeToOrder: script failed")
		return nil, fmt.Errorf("pledge script: %w", err)
	}
	if !res.OK {
		e.refundAfterFailure(context.WithoutCancel(ctx), userID, "pledgeToOrder: rejected: "+res.Reason)
		e.events.Post(events.Event{Kind: events.PledgeFailed, Order: res.Order, UserID: userID, Reason: res.Reason})
		return nil, mapPledgeReason(res.Reason)
	}

	order := res.Order
	if err := e.store.UpdatePledge(ctx, orderID, order.PledgeMap, order.TotalPledge, order.TotalUsers, order.Status); err != nil {
		// the cache already committed the pledge; the durable store is
		// the system of record for history but is not in the critical
		// path for correctness of the live order, so the error is returned
		// to the caller rather than unwound (spec §4.3 step 10 runs in
		// Redis alone).
		return nil, fmt.Errorf("persist pledge: %w", err)
	}

	if res.TransitionedToCompleted {
		e.events.Post(events.Event{Kind: events.OrderCompleted, Order: order, UserID: userID})
	} else {
		e.events.Post(events.Event{Kind: events.PledgeSuccess, Order: order, UserID: userID})
	}

	return &PledgeResult{Order: order, TransitionedToComplete: res.TransitionedToCompleted}, nil
}

func mapPledgeReason(reason string) error {
	switch reason {
	case "not_found":
		return domain.ErrOrderNotFound
	case "not_active":
		return domain.ErrOrderNotActive
	case "already_complete":
		return domain.ErrOrderFullyPledged
	default:
		return fmt.Errorf("%w: %s", domain.ErrValidation, reason)
	}
}
