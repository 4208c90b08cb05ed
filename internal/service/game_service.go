// Package service wires the engine (pkg/ti4) to persistence
// (internal/repository) and real-time fan-out, and is the layer REST and
// WebSocket handlers call into.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/repository"
	"github.com/ti-assistant/server/pkg/ti4"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotCreator   = errors.New("only the creator can delete this game")
)

// Broadcaster sends real-time events to connected clients. Implemented by
// the WebSocket hub; a NoopBroadcaster is used where WS fan-out is disabled
// (unit tests, the democtl CLI).
type Broadcaster interface {
	BroadcastGameEvent(gameID gameid.GameId, eventType string, data any)
}

// NoopBroadcaster discards every event.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(gameid.GameId, string, any) {}

// session holds one game's live, in-memory engine instance plus the
// durable sequence number it was last persisted at. Every read or write
// against a game goes through its session so that event application and
// the durable append happen under one lock — the "per-game write lock"
// named in the design: it serializes reducer application with the
// corresponding log append, so two concurrent requests can never produce
// two different "next" states from the same starting state.
type session struct {
	mu       sync.Mutex
	game     *ti4.Game
	lastSeq  int64
	creator  string
	name     string
}

// GameService is the façade handlers call into: it loads or creates a
// game's live session, applies events to it, and keeps the durable log and
// hot-state cache in sync.
type GameService struct {
	store   repository.EventStore
	cache   repository.SnapshotCache
	bcast   Broadcaster

	mu       sync.Mutex
	sessions map[gameid.GameId]*session
}

// NewGameService creates a GameService. cache may be nil to disable the
// hot-state cache entirely — every load then replays from store.
func NewGameService(store repository.EventStore, cache repository.SnapshotCache, bcast Broadcaster) *GameService {
	if bcast == nil {
		bcast = NoopBroadcaster{}
	}
	return &GameService{
		store:    store,
		cache:    cache,
		bcast:    bcast,
		sessions: make(map[gameid.GameId]*session),
	}
}

// CreateGame registers a brand-new, empty lobby and returns its id. The
// random 32-bit id space is small enough that collisions are worth guarding
// against: the freshly drawn id is checked against every known game and
// redrawn on a hit, a handful of times before giving up.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID string, settings ti4.GameSettings) (gameid.GameId, error) {
	taken := make(map[gameid.GameId]bool)
	if summaries, err := s.store.ListGames(ctx); err == nil {
		for _, sum := range summaries {
			taken[sum.ID] = true
		}
	}
	s.mu.Lock()
	for id := range s.sessions {
		taken[id] = true
	}
	s.mu.Unlock()

	id, err := gameid.Random()
	if err != nil {
		return gameid.Zero, fmt.Errorf("service: draw game id: %w", err)
	}
	for attempt := 0; taken[id]; attempt++ {
		if attempt >= 8 {
			return gameid.Zero, fmt.Errorf("service: could not allocate an unused game id")
		}
		if id, err = gameid.Random(); err != nil {
			return gameid.Zero, fmt.Errorf("service: draw game id: %w", err)
		}
	}
	if err := s.store.CreateGame(ctx, id, name); err != nil {
		return gameid.Zero, fmt.Errorf("service: create game: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = &session{
		game:    ti4.NewGame(name, settings),
		creator: creatorID,
		name:    name,
	}
	s.mu.Unlock()

	return id, nil
}

// GetState returns a read-only snapshot of a game's current state,
// loading (and caching) it from the durable log if it is not already live
// in memory.
func (s *GameService) GetState(ctx context.Context, id gameid.GameId) (*ti4.GameState, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.game.State(), nil
}

// ApplyEvent validates and applies one event to a game, persists it, and
// broadcasts the resulting state to subscribers. A rejection is returned
// as a *ti4.Rejection and leaves the game's state and log untouched.
func (s *GameService) ApplyEvent(ctx context.Context, id gameid.GameId, event ti4.Event, now time.Time) (*ti4.GameState, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.game.Apply(event, now); err != nil {
		return nil, err
	}

	seq, err := s.store.AppendEvent(ctx, id, event, now)
	if err != nil {
		// The in-memory state has already advanced but the durable log
		// append failed: drop the live session so the next load rebuilds
		// it by replaying the durable log, and the two never diverge.
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("service: append event: %w", err)
	}
	sess.lastSeq = seq

	state := sess.game.State()
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, id, state, seq); err != nil {
			// The cache is a performance path only; a failed write here
			// just means the next load replays from the log instead.
		}
	}

	s.bcast.BroadcastGameEvent(id, event.Kind(), state)
	return state, nil
}

// Undo pops the most recently applied event from both the live session
// and the durable log, then replays from scratch so the two never drift.
func (s *GameService) Undo(ctx context.Context, id gameid.GameId) (*ti4.GameState, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.game.Undo(); err != nil {
		// A session resumed from a cached snapshot holds only the events
		// appended since the snapshot, so it cannot undo past it. Rebuild
		// from the full durable log and retry before giving up.
		events, loadErr := s.store.LoadEvents(ctx, id)
		if loadErr != nil || len(events) == 0 {
			return nil, err
		}
		rebuilt, replayErr := s.replayFromLog(ctx, id, events)
		if replayErr != nil {
			return nil, err
		}
		sess.game = rebuilt.game
		sess.lastSeq = rebuilt.lastSeq
		if err := sess.game.Undo(); err != nil {
			return nil, err
		}
	}
	if err := s.store.DeleteLastEvent(ctx, id); err != nil {
		return nil, fmt.Errorf("service: delete last event: %w", err)
	}
	if sess.lastSeq > 0 {
		sess.lastSeq--
	}

	state := sess.game.State()
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}
	s.bcast.BroadcastGameEvent(id, "undo", state)
	return state, nil
}

// DeleteGame removes a lobby outright: its durable log, its cached
// snapshot, and its live session. The creator check applies only while
// the game's session is resident in memory with a recorded creator; a
// session rebuilt from the log records none, and then any requester may
// delete the game.
func (s *GameService) DeleteGame(ctx context.Context, id gameid.GameId, requesterID string) error {
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()

	if sess != nil && sess.creator != "" && sess.creator != requesterID {
		return ErrNotCreator
	}

	if err := s.store.DeleteAllEvents(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("service: delete game: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// ListGames returns the summary rows used for the lobby browser.
func (s *GameService) ListGames(ctx context.Context) ([]repository.GameSummary, error) {
	return s.store.ListGames(ctx)
}

// loadSession returns a game's live session, constructing it from the
// cached snapshot (if fresh) or a full event-log replay (if not) when it
// is not already resident in memory.
func (s *GameService) loadSession(ctx context.Context, id gameid.GameId) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	events, err := s.store.LoadEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: load events: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrGameNotFound
	}

	if cached, seq, ok, err := s.tryCachedReplay(ctx, id, events); err == nil && ok {
		sess = cached
		sess.lastSeq = seq
	} else {
		sess, err = s.replayFromLog(ctx, id, events)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		// Another request built the session first; keep theirs.
		sess = existing
	} else {
		s.sessions[id] = sess
	}
	s.mu.Unlock()
	return sess, nil
}

// tryCachedReplay returns a session reconstructed from the cached
// snapshot plus only the events appended since it was taken, when the
// cache is enabled and not stale relative to the durable log. The game is
// resumed from the snapshot itself — the snapshot is the materialized
// state at its sequence number, so only the tail needs replaying.
func (s *GameService) tryCachedReplay(ctx context.Context, id gameid.GameId, events []repository.StoredEvent) (*session, int64, bool, error) {
	if s.cache == nil {
		return nil, 0, false, nil
	}
	snap, seq, ok, err := s.cache.GetSnapshot(ctx, id)
	if err != nil || !ok || int(seq) > len(events) {
		return nil, 0, false, err
	}

	game := ti4.ResumeGame(*snap)
	for _, e := range events[seq:] {
		if err := game.Apply(e.Event, e.At); err != nil {
			return nil, 0, false, err
		}
	}
	return &session{game: game}, int64(len(events)), true, nil
}

// replayFromLog rebuilds a session from scratch by folding every event in
// the durable log through the reducer. The game's display name lives on
// the `game` row rather than in the event log itself, so it is looked up
// separately via ListGames.
func (s *GameService) replayFromLog(ctx context.Context, id gameid.GameId, events []repository.StoredEvent) (*session, error) {
	var settings ti4.GameSettings
	timestamped := make([]ti4.TimestampedEvent, len(events))
	for i, e := range events {
		timestamped[i] = ti4.TimestampedEvent{Event: e.Event, At: e.At}
		if set, ok := e.Event.(ti4.SetSettings); ok {
			settings = set.Settings
		}
	}

	name := ""
	if summaries, err := s.store.ListGames(ctx); err == nil {
		for _, sum := range summaries {
			if sum.ID == id {
				name = sum.Name
				break
			}
		}
	}

	game, err := ti4.Replay(name, settings, timestamped)
	if err != nil {
		return nil, fmt.Errorf("service: replay: %w", err)
	}
	return &session{game: game, lastSeq: int64(len(events))}, nil
}
