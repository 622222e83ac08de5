package orderengine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/domain"
)

// GetActiveOrdersNear implements spec §4.5.2: a pure read of the live
// cache, never touching the durable store.
func (e *Engine) GetActiveOrdersNear(ctx context.Context, lat, lon float64, radiusKm float64) ([]*domain.Order, error) {
	if radiusKm <= 0 {
		radiusKm = e.cfg.DefaultSearchRadiusKm
	}
	orders, err := e.cache.FindNear(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("find near: %w", err)
	}
	return orders, nil
}

// OrderStatusView is the redacted projection returned to a caller
// (spec §4.5.5): for an ACTIVE order only the requester's own pledge;
// for a COMPLETED or EXPIRED order also the full pledge map, plus the
// phone-number map once COMPLETED and a refund note once EXPIRED.
type OrderStatusView struct {
	Order      *domain.Order
	YourPledge decimal.Decimal
	PledgeMap  map[string]decimal.Decimal
	PhoneMap   map[string]string
	Note       string
}

// GetOrderStatus implements spec §4.5.5: try the live cache first, fall
// back to the durable store for terminal orders the cache has already
// evicted.
func (e *Engine) GetOrderStatus(ctx context.Context, userID, orderID string) (*OrderStatusView, error) {
	order, err := e.cache.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if order == nil {
		order, err = e.store.Get(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("store get: %w", err)
		}
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if _, ok := order.PledgeMap[userID]; !ok {
		return nil, domain.ErrOrderNotFound
	}

	view := &OrderStatusView{Order: order, YourPledge: order.PledgeMap[userID]}

	switch order.Status {
	case domain.OrderCompleted:
		ids := make([]string, 0, len(order.PledgeMap))
		for id := range order.PledgeMap {
			ids = append(ids, id)
		}
		phoneMap, err := e.users.FindPhoneNumbers(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve phone numbers: %w", err)
		}
		view.PhoneMap = phoneMap
		view.PledgeMap = order.PledgeMap
	case domain.OrderExpired:
		view.PledgeMap = order.PledgeMap
		view.Note = "order expired before reaching its pledge threshold; your credit was refunded"
	}

	return view, nil
}
