package ti4

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Game wraps a GameState with its event history and exposes the mutation
// surface a session uses: Apply validates and transitions, Undo pops the
// last event and replays from scratch. The current state is held behind an
// atomic pointer so concurrent readers (e.g. a websocket broadcast
// goroutine building a snapshot to send) never observe a partially-applied
// state and never block the writer — the classic copy-on-write discipline:
// readers load a pointer to an immutable GameState value; the writer
// replaces the pointer, never mutates what a reader might be holding.
type Game struct {
	state   atomic.Pointer[GameState]
	history []loggedEvent

	// base is the state the history folds on top of: a fresh Creation-phase
	// state for a new game, or a materialized snapshot for a game resumed
	// from the cache. Undo replays the retained history from here.
	base GameState
}

type loggedEvent struct {
	event Event
	at    time.Time
}

// NewGame starts a fresh game in the Creation phase.
func NewGame(name string, settings GameSettings) *Game {
	g := &Game{base: NewGameState(name, settings)}
	initial := g.base.clone()
	g.state.Store(&initial)
	return g
}

// ResumeGame starts a game from an already-materialized state, e.g. a
// cached snapshot, instead of an empty Creation-phase state. Events applied
// afterwards fold on top of the snapshot; Undo can reach back only as far
// as the snapshot itself.
func ResumeGame(state GameState) *Game {
	g := &Game{base: state.clone()}
	current := state.clone()
	g.state.Store(&current)
	return g
}

// State returns the current materialized state. The returned pointer must
// be treated as read-only; callers that need to build a new state call
// Apply instead of mutating through this pointer.
func (g *Game) State() *GameState {
	return g.state.Load()
}

// Apply validates and applies one event, replacing the current state only
// if the event is accepted. On rejection, the game is left completely
// unchanged — callers can rely on "reject => no side effect" holding
// exactly, including the history log, which is only appended to on
// acceptance.
func (g *Game) Apply(event Event, now time.Time) error {
	current := *g.state.Load()
	next, err := Apply(current, event, now)
	if err != nil {
		return err
	}
	g.history = append(g.history, loggedEvent{event: event, at: now})
	g.state.Store(&next)
	return nil
}

// ApplyAdvisory validates and applies one event in advisory mode: a
// rejection is logged as a warning and the event discarded, leaving the
// game unchanged. It reports whether the event was accepted. Used by demo
// replay, where a stale fixture event should cost that one event, not the
// whole game.
func (g *Game) ApplyAdvisory(event Event, now time.Time) bool {
	if err := g.Apply(event, now); err != nil {
		log.Warn().Str("eventKind", event.Kind()).Err(err).Msg("Discarding rejected event")
		return false
	}
	return true
}

// Undo removes the last accepted event and rebuilds the state by replaying
// every remaining event from the base state. Because the reducer is pure
// and deterministic, this always reproduces exactly the state the game
// would have been in had the undone event never been applied.
func (g *Game) Undo() error {
	if len(g.history) == 0 {
		return fmt.Errorf("ti4: nothing to undo")
	}
	remaining := g.history[:len(g.history)-1]
	state := g.base.clone()
	for _, le := range remaining {
		next, err := Apply(state, le.event, le.at)
		if err != nil {
			return fmt.Errorf("ti4: replay during undo: %w", err)
		}
		state = next
	}
	g.history = remaining
	g.state.Store(&state)
	return nil
}

// History returns the accepted events applied so far, in order. The
// returned slice must not be mutated by the caller.
func (g *Game) History() []Event {
	out := make([]Event, len(g.history))
	for i, le := range g.history {
		out[i] = le.event
	}
	return out
}

// Replay rebuilds a Game from a stored event log, applying each event in
// order with its own recorded timestamp. It is the load-time counterpart
// of Apply: a game reloaded from storage always reaches the exact same
// state as the live game that produced the log (the replay-determinism
// property). A rejection here means the log is corrupt, so it propagates.
func Replay(name string, settings GameSettings, events []TimestampedEvent) (*Game, error) {
	g := NewGame(name, settings)
	for i, te := range events {
		if err := g.Apply(te.Event, te.At); err != nil {
			return nil, fmt.Errorf("ti4: replay event %d: %w", i, err)
		}
	}
	return g, nil
}

// ReplayAdvisory rebuilds a Game from an event log in advisory mode:
// events the reducer rejects are logged and dropped rather than failing
// the whole replay. Used for demo fixtures, whose logs were not produced
// by this binary and may contain events the current rules refuse.
func ReplayAdvisory(name string, settings GameSettings, events []TimestampedEvent) *Game {
	g := NewGame(name, settings)
	for _, te := range events {
		g.ApplyAdvisory(te.Event, te.At)
	}
	return g
}

// TimestampedEvent pairs a stored event with the timestamp it was recorded
// with, as loaded from the persistence port.
type TimestampedEvent struct {
	Event Event
	At    time.Time
}
