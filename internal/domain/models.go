package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the monotonic lifecycle of an Order.
type OrderStatus string

const (
	OrderActive    OrderStatus = "ACTIVE"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderExpired   OrderStatus = "EXPIRED"
)

// User is the identity record owned jointly by the credit ledger (Credits)
// and the out-of-core phone/push identity subsystem.
type User struct {
	ID          string `db:"id"`
	PhoneNumber string `db:"phone_number"`
	PushToken   string `db:"push_token"`
	Credits     int    `db:"credits"`
}

// Order is a pending collective purchase. PledgeMap is additive per user
// and its keys are unique by construction (see I6).
type Order struct {
	ID           string                     `db:"id" json:"orderId"`
	Status       OrderStatus                `db:"status" json:"status"`
	CreatorID    string                     `db:"creator_id" json:"creatorId"`
	AmountNeeded decimal.Decimal            `db:"amount_needed" json:"amountNeeded"`
	PledgeMap    map[string]decimal.Decimal `db:"pledge_map" json:"pledgeMap"`
	TotalPledge  decimal.Decimal            `db:"total_pledge" json:"totalPledge"`
	TotalUsers   int                        `db:"total_users" json:"totalUsers"`
	Platform     string                     `db:"platform" json:"platform"`
	Latitude     decimal.Decimal            `db:"latitude" json:"latitude"`
	Longitude    decimal.Decimal            `db:"longitude" json:"longitude"`
	CreatedAt    time.Time                  `db:"created_at" json:"createdAt"`
	ExpiresAt    time.Time                  `db:"-" json:"expiresAt,omitempty"`
}

// Clone returns a deep-enough copy so callers mutating PledgeMap after a
// script round-trip never alias the cache's decoded snapshot.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.PledgeMap = make(map[string]decimal.Decimal, len(o.PledgeMap))
	for k, v := range o.PledgeMap {
		c.PledgeMap[k] = v
	}
	return &c
}

// IsTerminal reports whether no further status transition is permitted (I5).
func (o *Order) IsTerminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderExpired
}
