// Package ordercache implements the Order Cache (C3): the in-memory
// representation of active orders — serialized snapshot, TTL, geo
// index, and participant set — and hosts the scripted pledge operation
// that gives pledgeToOrder its atomicity (spec §4.3).
//
// None of the retrieved example repositories wire a cache/geo/pubsub
// client; github.com/redis/go-redis/v9 is adopted here because it is
// the one library that supplies all five primitives the component
// needs (TTL strings, GEOADD/GEOSEARCH, EVAL, SADD, keyspace
// notifications) behind a single connection (see DESIGN.md).
package ordercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/domain"
)

// Cache wraps a redis client under a process-wide key namespace.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) orderKey(id string) string        { return c.prefix + "order:" + id }
func (c *Cache) participantsKey(id string) string { return c.prefix + "order:" + id + ":participants" }
func (c *Cache) geoKey() string                    { return c.prefix + "orders:geo" }

// OrderIDFromKey extracts {id} out of an "{prefix}order:{id}" key, used
// by the expiry watcher to turn a TTL-expiration key notification back
// into an order id.
func (c *Cache) OrderIDFromKey(key string) (string, bool) {
	base := c.prefix + "order:"
	if len(key) <= len(base) || key[:len(base)] != base {
		return "", false
	}
	id := key[len(base):]
	// Exclude the companion ":participants" key, which shares the prefix.
	const suffix = ":participants"
	if len(id) >= len(suffix) && id[len(id)-len(suffix):] == suffix {
		return "", false
	}
	return id, true
}

// wireOrder mirrors domain.Order but carries decimals as strings so the
// pledge script's Lua environment can parse/format them without
// depending on cjson's numeric formatting of Go-produced floats.
type wireOrder struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	CreatorID    string            `json:"creatorId"`
	AmountNeeded string            `json:"amountNeeded"`
	PledgeMap    map[string]string `json:"pledgeMap"`
	TotalPledge  string            `json:"totalPledge"`
	TotalUsers   int               `json:"totalUsers"`
	Platform     string            `json:"platform"`
	Latitude     string            `json:"latitude"`
	Longitude    string            `json:"longitude"`
}

func toWire(o *domain.Order) (*wireOrder, error) {
	pledgeMap := make(map[string]string, len(o.PledgeMap))
	for k, v := range o.PledgeMap {
		pledgeMap[k] = v.String()
	}
	return &wireOrder{
		ID:           o.ID,
		Status:       string(o.Status),
		CreatorID:    o.CreatorID,
		AmountNeeded: o.AmountNeeded.String(),
		PledgeMap:    pledgeMap,
		TotalPledge:  o.TotalPledge.String(),
		TotalUsers:   o.TotalUsers,
		Platform:     o.Platform,
		Latitude:     o.Latitude.String(),
		Longitude:    o.Longitude.String(),
	}, nil
}

func fromWire(w *wireOrder) (*domain.Order, error) {
	amountNeeded, err := decimal.NewFromString(w.AmountNeeded)
	if err != nil {
		return nil, fmt.Errorf("decode amountNeeded: %w", err)
	}
	totalPledge, err := decimal.NewFromString(w.TotalPledge)
	if err != nil {
		return nil, fmt.Errorf("decode totalPledge: %w", err)
	}
	lat, err := decimal.NewFromString(orDefault(w.Latitude, "0"))
	if err != nil {
		return nil, fmt.Errorf("decode latitude: %w", err)
	}
	lon, err := decimal.NewFromString(orDefault(w.Longitude, "0"))
	if err != nil {
		return nil, fmt.Errorf("decode longitude: %w", err)
	}
	pledgeMap := make(map[string]decimal.Decimal, len(w.PledgeMap))
	for k, v := range w.PledgeMap {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("decode pledge for %s: %w", k, err)
		}
		pledgeMap[k] = d
	}
	return &domain.Order{
		ID:           w.ID,
		Status:       domain.OrderStatus(w.Status),
		CreatorID:    w.CreatorID,
		AmountNeeded: amountNeeded,
		PledgeMap:    pledgeMap,
		TotalPledge:  totalPledge,
		TotalUsers:   w.TotalUsers,
		Platform:     w.Platform,
		Latitude:     lat,
		Longitude:    lon,
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Create writes the snapshot, participants set, and geo entry for a
// newly-active order. TTL is applied to the snapshot and participants
// set; the geo entry persists until Delete (spec §4.3 "Create").
func (c *Cache) Create(ctx context.Context, order *domain.Order, ttl time.Duration) error {
	wire, err := toWire(order)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return err
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.orderKey(order.ID), raw, ttl)
	pipe.GeoAdd(ctx, c.geoKey(), &redis.GeoLocation{
		Name:      c.orderKey(order.ID),
		Longitude: toF64(order.Longitude),
		Latitude:  toF64(order.Latitude),
	})
	for userID := range order.PledgeMap {
		pipe.SAdd(ctx, c.participantsKey(order.ID), userID)
	}
	if len(order.PledgeMap) > 0 {
		pipe.PExpire(ctx, c.participantsKey(order.ID), ttl)
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		zap.L().Error("can't write order cache entry", zap.String("orderId", order.ID), zap.Error(err))
	}
	return err
}

func toF64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Get deserializes the snapshot, returning nil, nil if absent.
func (c *Cache) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	raw, err := c.rdb.Get(ctx, c.orderKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wire wireOrder
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return fromWire(&wire)
}

// Delete removes the snapshot, participants set, and geo entry.
// Idempotent: deleting an already-absent order is a no-op.
func (c *Cache) Delete(ctx context.Context, orderID string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, c.orderKey(orderID))
	pipe.Del(ctx, c.participantsKey(orderID))
	pipe.ZRem(ctx, c.geoKey(), c.orderKey(orderID))
	_, err := pipe.Exec(ctx)
	return err
}

// FindNear returns snapshots for every order within radiusKm of
// (lat, lon). Geo entries whose snapshot has already expired between
// the geo lookup and the snapshot read are filtered out silently —
// this is an explicitly best-effort, stale-read-tolerant query
// (spec §4.3 "Find-near").
func (c *Cache) FindNear(ctx context.Context, lat, lon, radiusKm float64) ([]*domain.Order, error) {
	res, err := c.rdb.GeoSearch(ctx, c.geoKey(), &redis.GeoSearchQuery{
		Longitude: lon,
		Latitude:  lat,
		Radius:    radiusKm,
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		zap.L().Error("geo search failed", zap.Error(err))
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}

	keys := make([]string, len(res))
	copy(keys, res)
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		zap.L().Error("mget order snapshots failed", zap.Error(err))
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue // expired between geo lookup and snapshot read
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var wire wireOrder
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			zap.L().Warn("can't decode cached order snapshot", zap.Error(err))
			continue
		}
		order, err := fromWire(&wire)
		if err != nil {
			zap.L().Warn("can't convert cached order snapshot", zap.Error(err))
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}
