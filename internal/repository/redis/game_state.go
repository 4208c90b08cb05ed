package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/pkg/ti4"
)

// Key patterns for the hot-state cache and the idle-tracking keys the
// Inactivity Collector watches via keyspace notifications.
func snapshotKey(id gameid.GameId) string { return "game:" + id.String() + ":snapshot" }
func idleKey(id gameid.GameId) string     { return "game:" + id.String() + ":idle" }

type snapshotEnvelope struct {
	Seq   int64          `json:"seq"`
	State ti4.GameState  `json:"state"`
}

// SetSnapshot stores the latest materialized state for id, keyed by the
// sequence number it reflects, so a cache hit can be compared against
// EventStore's event count to detect staleness.
func (c *Client) SetSnapshot(ctx context.Context, id gameid.GameId, state *ti4.GameState, seq int64) error {
	data, err := json.Marshal(snapshotEnvelope{Seq: seq, State: *state})
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	return c.rdb.Set(ctx, snapshotKey(id), data, 0).Err()
}

// GetSnapshot retrieves the cached state for id, if present. A miss is not
// an error: callers fall back to a full event-log replay.
func (c *Client) GetSnapshot(ctx context.Context, id gameid.GameId) (*ti4.GameState, int64, bool, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err == redis.Nil {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis: get snapshot: %w", err)
	}
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, false, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return &env.State, env.Seq, true, nil
}

// Invalidate drops the cached snapshot for id, forcing the next load to
// replay from the durable event log.
func (c *Client) Invalidate(ctx context.Context, id gameid.GameId) error {
	return c.rdb.Del(ctx, snapshotKey(id)).Err()
}

// idleGracePeriod is how long a lobby can sit with zero subscribers before
// its idle key expires and a keyspace notification wakes the Inactivity
// Collector, rather than waiting for the next cron tick.
const idleGracePeriod = 10 * time.Minute

// MarkIdle sets (or refreshes) id's idle TTL key. No server code path
// calls it; only the redis integration test exercises it.
func (c *Client) MarkIdle(ctx context.Context, id gameid.GameId) error {
	return c.rdb.Set(ctx, idleKey(id), "1", idleGracePeriod).Err()
}

// ClearIdle removes id's idle key. Like MarkIdle, it has no caller outside
// the redis integration test.
func (c *Client) ClearIdle(ctx context.Context, id gameid.GameId) error {
	return c.rdb.Del(ctx, idleKey(id)).Err()
}

// SubscribeExpired returns a subscription to every expired-key
// notification on database 0 (internal/gc filters for idle keys itself),
// requiring the server have `notify-keyspace-events Ex` (or broader)
// enabled.
func (c *Client) SubscribeExpired(ctx context.Context) *redis.PubSub {
	return c.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
}

// SubscribeExpiredKeys adapts SubscribeExpired to a plain channel of key
// names plus a cancel func, the shape internal/gc's Collector consumes so
// it doesn't need to import go-redis just to read a pub/sub message.
func (c *Client) SubscribeExpiredKeys(ctx context.Context) (<-chan string, func()) {
	sub := c.SubscribeExpired(ctx)
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { sub.Close() }
}
