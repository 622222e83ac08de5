// Package events defines the fire-and-forget messages the order engine
// (C5) posts for the notification dispatcher (C6) to fan out. Events are
// not durable and never gate correctness — see spec §9 "event bus".
package events

import "github.com/bundl/bundl/internal/domain"

// Kind names the lifecycle moment an Event represents.
type Kind string

const (
	OrderCreated   Kind = "ORDER_CREATED"
	PledgeSuccess  Kind = "PLEDGE_SUCCESS"
	PledgeFailed   Kind = "PLEDGE_FAILED"
	OrderCompleted Kind = "ORDER_COMPLETED"
	OrderExpired   Kind = "ORDER_EXPIRED"
)

// Event is a snapshot posted at most once from the engine to the
// dispatcher. Fields not relevant to Kind are left zero.
type Event struct {
	Kind   Kind
	Order  *domain.Order
	UserID string
	Reason string
}
