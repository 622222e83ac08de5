// Package orderengine implements the Order Engine (C5): the component
// that orchestrates createOrder, pledgeToOrder, getActiveOrdersNear,
// getOrderStatus, and handleExpiry, owning the credit charge/refund
// choreography and cross-store consistency (spec §4.5).
package orderengine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/cache/ordercache"
	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/events"
)

// Ledger is the Credit Ledger (C1) dependency, satisfied by
// ledgerengine.Service.
type Ledger interface {
	TryDebit(ctx context.Context, userID string, n int) (bool, error)
	Credit(ctx context.Context, userID string, n int) error
	Get(ctx context.Context, userID string) (int, error)
}

// OrderStore is the durable Order Store (C2) dependency, satisfied by
// orderrepo.Repository.
type OrderStore interface {
	Insert(ctx context.Context, order *domain.Order) error
	UpdatePledge(ctx context.Context, orderID string, pledgeMap map[string]decimal.Decimal, totalPledge decimal.Decimal, totalUsers int, status domain.OrderStatus) error
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	FindActive(ctx context.Context) ([]*domain.Order, error)
}

// Cache is the live Order Cache (C3) dependency, satisfied by
// ordercache.Cache.
type Cache interface {
	Create(ctx context.Context, order *domain.Order, ttl time.Duration) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Delete(ctx context.Context, orderID string) error
	FindNear(ctx context.Context, lat, lon, radiusKm float64) ([]*domain.Order, error)
	Pledge(ctx context.Context, orderID, userID string, pledgeAmount decimal.Decimal, fallbackTTL time.Duration) (*ordercache.PledgeResult, error)
}

// UserRepo resolves identity fields the engine needs but does not own.
type UserRepo interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	FindPhoneNumbers(ctx context.Context, userIDs []string) (map[string]string, error)
}

// EventSink is the Notification Dispatcher (C6) dependency. Posting
// never blocks and never returns an error the engine must react to
// (spec §9 "event bus").
type EventSink interface {
	Post(evt events.Event)
}
