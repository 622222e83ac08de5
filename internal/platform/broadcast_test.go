package platform

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bundl/bundl/internal/domain"
)

type fakeOrderLister struct {
	orders []*domain.Order
	err    error
}

func (f *fakeOrderLister) FindActive(ctx context.Context) ([]*domain.Order, error) {
	return f.orders, f.err
}

func TestOpsDashboard_ListActiveOrdersForOps(t *testing.T) {
	lister := &fakeOrderLister{orders: []*domain.Order{
		{ID: "ord-1", Status: domain.OrderActive, AmountNeeded: decimal.NewFromInt(100), TotalPledge: decimal.NewFromInt(20), TotalUsers: 2, Platform: "amazon"},
	}}
	d := NewOpsDashboard(lister)

	summaries, err := d.ListActiveOrdersForOps(context.Background())
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "ord-1", summaries[0].OrderID)
	assert.Equal(t, 2, summaries[0].TotalUsers)
}
