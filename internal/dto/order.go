package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/domain"
)

// CreateOrderRequestDTO is the createOrder request body (spec §6).
type CreateOrderRequestDTO struct {
	AmountNeeded  decimal.Decimal `json:"amountNeeded"`
	Platform      string          `json:"platform"`
	Latitude      decimal.Decimal `json:"latitude"`
	Longitude     decimal.Decimal `json:"longitude"`
	InitialPledge decimal.Decimal `json:"initialPledge"`
	TTLSeconds    int             `json:"ttlSeconds,omitempty"`
}

// PledgeToOrderRequestDTO is the pledgeToOrder request body.
type PledgeToOrderRequestDTO struct {
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
}

// OrderResponseDTO is the public projection of domain.Order returned by
// createOrder, activeOrdersNear, and pledgeToOrder.
type OrderResponseDTO struct {
	OrderID      string          `json:"orderId"`
	Status       string          `json:"status"`
	CreatorID    string          `json:"creatorId"`
	AmountNeeded decimal.Decimal `json:"amountNeeded"`
	TotalPledge  decimal.Decimal `json:"totalPledge"`
	TotalUsers   int             `json:"totalUsers"`
	Platform     string          `json:"platform"`
	Latitude     decimal.Decimal `json:"latitude"`
	Longitude    decimal.Decimal `json:"longitude"`
	CreatedAt    time.Time       `json:"createdAt"`
	ExpiresAt    time.Time       `json:"expiresAt,omitempty"`
}

func FromOrder(o *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		OrderID:      o.ID,
		Status:       string(o.Status),
		CreatorID:    o.CreatorID,
		AmountNeeded: o.AmountNeeded,
		TotalPledge:  o.TotalPledge,
		TotalUsers:   o.TotalUsers,
		Platform:     o.Platform,
		Latitude:     o.Latitude,
		Longitude:    o.Longitude,
		CreatedAt:    o.CreatedAt,
		ExpiresAt:    o.ExpiresAt,
	}
}

// OrderStatusResponseDTO is the orderStatus response, redacted per
// spec §4.5.5: phoneMap is populated only once the order is COMPLETED,
// and pledgeMap is populated only for COMPLETED/EXPIRED orders, once the
// caller no longer has anything to gain from the threshold staying hidden.
type OrderStatusResponseDTO struct {
	Order      OrderResponseDTO           `json:"order"`
	YourPledge decimal.Decimal            `json:"yourPledge"`
	PledgeMap  map[string]decimal.Decimal `json:"pledgeMap,omitempty"`
	PhoneMap   map[string]string          `json:"phoneMap,omitempty"`
	Note       string                     `json:"note,omitempty"`
}
