package platform

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/domain"
)

// OrderSummary is the ops-facing projection of an order: no phone
// numbers, no pledge_map, just enough to staff an incident dashboard.
type OrderSummary struct {
	OrderID      string          `json:"orderId"`
	Status       string          `json:"status"`
	AmountNeeded decimal.Decimal `json:"amountNeeded"`
	TotalPledge  decimal.Decimal `json:"totalPledge"`
	TotalUsers   int             `json:"totalUsers"`
	Platform     string          `json:"platform"`
}

// BroadcastDashboard is the read-only admin view over C2 that the
// marketing broadcast system (named out-of-core) consumes.
type BroadcastDashboard interface {
	ListActiveOrdersForOps(ctx context.Context) ([]OrderSummary, error)
}

// OrderLister is the narrow C2 slice the dashboard needs, satisfied by
// orderrepo.Repository.
type OrderLister interface {
	FindActive(ctx context.Context) ([]*domain.Order, error)
}

type OpsDashboard struct {
	store OrderLister
}

func NewOpsDashboard(store OrderLister) *OpsDashboard {
	return &OpsDashboard{store: store}
}

func (d *OpsDashboard) ListActiveOrdersForOps(ctx context.Context) ([]OrderSummary, error) {
	orders, err := d.store.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			OrderID:      o.ID,
			Status:       string(o.Status),
			AmountNeeded: o.AmountNeeded,
			TotalPledge:  o.TotalPledge,
			TotalUsers:   o.TotalUsers,
			Platform:     o.Platform,
		})
	}
	return summaries, nil
}
