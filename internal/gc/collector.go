// Package gc implements the inactivity collector: a cron-scheduled sweep
// that unloads lobbies nobody is watching anymore, woken early by Redis
// keyspace notifications when an idle grace key expires.
package gc

import (
	"context"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/repository"
)

// SubscriberCounter reports how many live connections are watching a game,
// implemented by the Session Hub. Declared locally so this package does
// not need to import internal/handler.
type SubscriberCounter interface {
	GameSubscriberCount(gameID string) int
}

// IdleTracker is the subset of the Redis cache client the collector needs:
// an idle-key expiry subscription and a way to clear it once a game is
// reaped, matching internal/repository/redis's MarkIdle/ClearIdle/
// SubscribeExpired helpers.
type IdleTracker interface {
	ClearIdle(ctx context.Context, id gameid.GameId) error
	SubscribeExpiredKeys(ctx context.Context) (<-chan string, func())
}

// Collector periodically removes games with zero subscribers whose idle
// grace period has elapsed.
type Collector struct {
	store repository.EventStore
	hub   SubscriberCounter
	idle  IdleTracker
	cron  *cron.Cron
}

// New creates a Collector. cronExpr is a standard 6-field robfig/cron
// expression (seconds-first), e.g. "0 */10 * * * *" for every ten minutes.
func New(store repository.EventStore, hub SubscriberCounter, idle IdleTracker, cronExpr string) (*Collector, error) {
	c := &Collector{
		store: store,
		hub:   hub,
		idle:  idle,
		cron:  cron.New(cron.WithSeconds()),
	}
	if _, err := c.cron.AddFunc(cronExpr, func() { c.sweep(context.Background()) }); err != nil {
		return nil, err
	}
	return c, nil
}

// Start begins the cron schedule and, if idle is non-nil, a keyspace
// notification listener that reaps a game the instant its idle key
// expires rather than waiting for the next cron tick.
func (c *Collector) Start(ctx context.Context) {
	c.cron.Start()
	if c.idle != nil {
		go c.listenExpired(ctx)
	}
}

// Stop halts the cron schedule, waiting for any in-flight sweep to finish.
func (c *Collector) Stop() {
	<-c.cron.Stop().Done()
}

// sweep lists every known game and deletes the ones with zero subscribers.
// Games still being read from — even ones with a confusingly small player
// count — are never touched; only the hub's live subscriber count decides
// activity, matching the "non-blocking lock probe, zero-subscriber check"
// behavior named in the design.
func (c *Collector) sweep(ctx context.Context) {
	summaries, err := c.store.ListGames(ctx)
	if err != nil {
		log.Error().Err(err).Msg("inactivity collector: list games failed")
		return
	}

	for _, g := range summaries {
		if c.hub.GameSubscriberCount(g.ID.String()) > 0 {
			continue
		}
		if err := c.store.DeleteAllEvents(ctx, g.ID); err != nil {
			log.Error().Err(err).Str("gameId", g.ID.String()).Msg("inactivity collector: delete failed")
			continue
		}
		log.Info().Str("gameId", g.ID.String()).Msg("inactivity collector: removed idle game")
	}
}

// listenExpired reacts to idle-key expiry notifications from Redis,
// reaping the matching game immediately instead of waiting for the next
// cron tick.
func (c *Collector) listenExpired(ctx context.Context) {
	ch, cancel := c.idle.SubscribeExpiredKeys(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-ch:
			if !ok {
				return
			}
			c.handleExpiredKey(ctx, key)
		}
	}
}

func (c *Collector) handleExpiredKey(ctx context.Context, key string) {
	if !strings.HasPrefix(key, "game:") || !strings.HasSuffix(key, ":idle") {
		return
	}
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return
	}
	id, err := gameid.Parse(parts[1])
	if err != nil {
		return
	}
	if c.hub.GameSubscriberCount(id.String()) > 0 {
		return
	}
	if err := c.store.DeleteAllEvents(ctx, id); err != nil {
		log.Error().Err(err).Str("gameId", id.String()).Msg("inactivity collector: delete on expiry failed")
		return
	}
	log.Info().Str("gameId", id.String()).Msg("inactivity collector: removed game after idle expiry")
}
