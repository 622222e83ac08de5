// Package notify implements the Notification Dispatcher (C6): a
// best-effort, non-blocking fan-out of lifecycle events to push
// messages. Dispatcher failures never surface to callers and never
// alter engine state (spec §4.6).
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/events"
)

// PushSender is the external push-delivery collaborator (spec §1,
// "push notification delivery ... fire-and-forget side effect").
// Bundl owns only this interface; the concrete gateway lives outside
// the core.
type PushSender interface {
	Send(ctx context.Context, pushToken, title, body string) error
	// BroadcastNearby notifies the gateway's own subscriber registry for
	// users within radiusKm of (lat, lon); the core has no subscriber
	// list of its own to iterate (spec §4.6 "geohash-scoped broadcasts").
	BroadcastNearby(ctx context.Context, lat, lon, radiusKm float64, title, body string) error
}

// UserLookup resolves push tokens; missing tokens are silently skipped
// (spec §4.6).
type UserLookup interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

type Dispatcher struct {
	sender UserLookup
	push   PushSender
	pool   WorkerPoolI
	queue  chan events.Event
}

func New(lookup UserLookup, push PushSender) *Dispatcher {
	return &Dispatcher{
		sender: lookup,
		push:   push,
		pool:   NewWorkerPool(10),
		queue:  make(chan events.Event, 256),
	}
}

// Start launches the consume loop until ctx is canceled.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-d.queue:
				d.dispatch(ctx, evt)
			}
		}
	}()
}

// Post enqueues an event, never blocking the caller past the queue's
// buffer; a full queue drops the event rather than stalling C5 — the
// engine's correctness never depends on notification delivery.
func (d *Dispatcher) Post(evt events.Event) {
	select {
	case d.queue <- evt:
	default:
		zap.L().Warn("notification queue full, dropping event", zap.String("kind", string(evt.Kind)))
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, evt events.Event) {
	_ = d.pool.AddTask(ctx, func() error {
		return d.deliver(ctx, evt)
	})
}

func (d *Dispatcher) deliver(ctx context.Context, evt events.Event) error {
	title, body := messageFor(evt)
	if title == "" {
		return nil
	}

	if evt.Kind == events.OrderCreated && evt.Order != nil {
		lat, _ := evt.Order.Latitude.Float64()
		lon, _ := evt.Order.Longitude.Float64()
		if err := d.push.BroadcastNearby(ctx, lat, lon, 5, title, body); err != nil {
			zap.L().Warn("nearby broadcast failed", zap.Error(err))
		}
	}

	recipients := d.recipientsFor(evt)
	for _, userID := range recipients {
		d.sendToUser(ctx, userID, title, body)
	}
	return nil
}

// recipientsFor fans a terminal-state event out to every participant
// (spec §4.5.5 step 5: every user in pledge_map at expiry), and a
// per-action event to the single acting user.
func (d *Dispatcher) recipientsFor(evt events.Event) []string {
	switch evt.Kind {
	case events.OrderCompleted, events.OrderExpired:
		if evt.Order == nil {
			return nil
		}
		ids := make([]string, 0, len(evt.Order.PledgeMap))
		for userID := range evt.Order.PledgeMap {
			ids = append(ids, userID)
		}
		return ids
	default:
		userID := evt.UserID
		if userID == "" && evt.Order != nil {
			userID = evt.Order.CreatorID
		}
		if userID == "" {
			return nil
		}
		return []string{userID}
	}
}

func (d *Dispatcher) sendToUser(ctx context.Context, userID, title, body string) {
	token, err := d.sender.PushToken(ctx, userID)
	if err != nil || token == "" {
		return // missing push tokens are silently skipped
	}
	if err := d.push.Send(ctx, token, title, body); err != nil {
		zap.L().Warn("push delivery failed", zap.String("userId", userID), zap.Error(err))
	}
}

func messageFor(evt events.Event) (title, body string) {
	switch evt.Kind {
	case events.OrderCreated:
		return "Order created", "Your group order is live and waiting for pledges."
	case events.PledgeSuccess:
		return "Pledge received", "Your pledge was recorded."
	case events.PledgeFailed:
		return "Pledge failed", fmt.Sprintf("Your pledge could not be processed: %s", evt.Reason)
	case events.OrderCompleted:
		return "Order complete", "Your group order reached its threshold."
	case events.OrderExpired:
		return "Order expired", "Your group order expired and your credit was refunded."
	default:
		return "", ""
	}
}
