// Package expiry implements the Expiry Watcher (C4): a single-threaded
// subscriber to the cache's key-expiration notifications that turns
// expired order:{id} keys into OrderExpired events for the engine
// (spec §4.4). Structured like the teacher's accrual.Service — a
// Start(ctx) that launches a background run loop — but the loop here
// reacts to a pub/sub channel instead of a ticker.
package expiry

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/cache/ordercache"
)

const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 5 * time.Second
)

// Handler is invoked once per observed expiry, exactly once per key,
// with the extracted order id.
type Handler func(ctx context.Context, orderID string)

type Watcher struct {
	rdb     *redis.Client
	cache   *ordercache.Cache
	channel string
	handler Handler
}

// New builds a Watcher that subscribes to channel (the Redis
// keyspace-notification pub/sub channel, e.g. "__keyevent@0__:expired")
// and reports order ids for keys matching the cache's order:{id}
// pattern.
func New(rdb *redis.Client, cache *ordercache.Cache, channel string, handler Handler) *Watcher {
	return &Watcher{rdb: rdb, cache: cache, channel: channel, handler: handler}
}

// Start runs the subscribe loop until ctx is canceled. On a dropped
// subscription it reconnects with exponential backoff capped at
// maxBackoff; any expiries missed during the outage are picked up by
// the engine's boot-time reconciliation, not by this watcher.
func (w *Watcher) Start(ctx context.Context) {
	backoff := minBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		if err := w.subscribeOnce(ctx); err != nil {
			zap.L().Warn("expiry watcher subscription dropped", zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = minBackoff
	}
}

func (w *Watcher) subscribeOnce(ctx context.Context) error {
	sub := w.rdb.Subscribe(ctx, w.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	zap.L().Info("expiry watcher subscribed", zap.String("channel", w.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errSubscriptionClosed
			}
			w.handleMessage(ctx, msg.Payload)
		}
	}
}

func (w *Watcher) handleMessage(ctx context.Context, key string) {
	orderID, ok := w.cache.OrderIDFromKey(strings.TrimSpace(key))
	if !ok {
		return
	}
	w.handler(ctx, orderID)
}

var errSubscriptionClosed = subscriptionClosedError{}

type subscriptionClosedError struct{}

func (subscriptionClosedError) Error() string { return "expiry watcher subscription channel closed" }
