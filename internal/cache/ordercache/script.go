package ordercache

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/domain"
)

//go:embed pledge.lua
var pledgeScriptSource string

var pledgeScript = redis.NewScript(pledgeScriptSource)

// PledgeResult is the decoded return value of the scripted pledge.
type PledgeResult struct {
	OK                      bool
	Reason                  string
	Order                   *domain.Order
	TransitionedToCompleted bool
}

type scriptReply struct {
	OK                      bool      `json:"ok"`
	Reason                  string    `json:"reason"`
	Order                   wireOrder `json:"order"`
	TransitionedToCompleted bool      `json:"transitionedToCompleted"`
}

// Pledge runs the scripted atomic mutation described in spec §4.3: load
// snapshot, validate status and threshold, add the pledge, flip to
// COMPLETED and self-clean the cache entries if the threshold is met,
// otherwise rewrite the snapshot preserving its remaining TTL.
func (c *Cache) Pledge(ctx context.Context, orderID, userID string, pledgeAmount decimal.Decimal, fallbackTTL time.Duration) (*PledgeResult, error) {
	orderKey := c.orderKey(orderID)
	keys := []string{orderKey, c.participantsKey(orderID), c.geoKey()}
	args := []interface{}{orderKey, userID, pledgeAmount.String(), fallbackTTL.Milliseconds()}

	raw, err := pledgeScript.Run(ctx, c.rdb, keys, args...).Text()
	if err != nil {
		return nil, fmt.Errorf("pledge script: %w", err)
	}

	var reply scriptReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("decode pledge script reply: %w", err)
	}

	result := &PledgeResult{
		OK:                      reply.OK,
		Reason:                  reply.Reason,
		TransitionedToCompleted: reply.TransitionedToCompleted,
	}
	if reply.OK {
		order, err := fromWire(&reply.Order)
		if err != nil {
			return nil, fmt.Errorf("decode pledged order: %w", err)
		}
		result.Order = order
	}
	return result, nil
}
