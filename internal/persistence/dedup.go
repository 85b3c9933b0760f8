package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventDeduper marks domain-event keys as seen so that at-least-once
// delivery does not double-count aggregations. SETNX with a TTL: the first
// caller for a key wins, replays within the window are reported as seen.
type EventDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventDeduper builds a deduper over the shared Redis client.
func NewEventDeduper(r *Redis, ttl time.Duration) *EventDeduper {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &EventDeduper{client: client, ttl: ttl}
}

// SeenBefore records key and reports whether it had already been recorded.
func (d *EventDeduper) SeenBefore(ctx context.Context, key string) (bool, error) {
	if d == nil || d.client == nil {
		return false, errors.New("redis client not configured")
	}
	set, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}
