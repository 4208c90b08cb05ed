// Package repository defines the persistence port: an append-only event
// log keyed by game id, plus an optional hot-state cache in front of it.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/pkg/ti4"
)

// ErrGameNotFound is returned by EventStore methods that require an
// existing game row, so callers across every backing implementation can
// match on one sentinel rather than a package-specific error.
var ErrGameNotFound = errors.New("repository: game not found")

// StoredEvent is one row of the event log as loaded from storage: the
// event itself, the sequence number it was assigned, and the timestamp it
// was recorded with.
type StoredEvent struct {
	Seq   int64
	Event ti4.Event
	At    time.Time
}

// GameSummary is the lightweight row used for lobby listings, distinct
// from the fully materialized GameState.
type GameSummary struct {
	ID        gameid.GameId
	Name      string
	CreatedAt time.Time
	EventCount int
}

// EventStore is the durable, append-only persistence port. Every method is
// context-first and returns a plain error; callers distinguish "not found"
// via the sentinel error above.
type EventStore interface {
	// CreateGame registers a new, empty game row. It must be called
	// before the first AppendEvent for a given id.
	CreateGame(ctx context.Context, id gameid.GameId, name string) error

	// AppendEvent appends one event to the game's log and returns the
	// sequence number it was assigned. The store is responsible for
	// making sequence assignment race-free under concurrent callers
	// (e.g. a unique (game_id, seq) constraint plus retry, or a
	// single-writer lock upstream — the Session Hub serializes writers
	// per game, so in practice there is never contention here).
	AppendEvent(ctx context.Context, id gameid.GameId, event ti4.Event, at time.Time) (seq int64, err error)

	// LoadEvents returns every event recorded for id, in sequence order.
	LoadEvents(ctx context.Context, id gameid.GameId) ([]StoredEvent, error)

	// DeleteLastEvent removes the most recently appended event, used by
	// the Undo operation to keep the durable log in lock-step with the
	// in-memory history after an accepted undo.
	DeleteLastEvent(ctx context.Context, id gameid.GameId) error

	// DeleteAllEvents removes every event for id (and the game row
	// itself), used when a lobby is deleted outright.
	DeleteAllEvents(ctx context.Context, id gameid.GameId) error

	// ListGames returns a summary of every known game, used by the
	// Inactivity Collector, the lobby listing, the service's id-collision
	// check and name lookup, and cmd/democtl.
	ListGames(ctx context.Context) ([]GameSummary, error)
}

// SnapshotCache is the optional hot-state cache sitting in front of
// EventStore. It is purely a performance path: every method degrades to a
// cache miss cleanly, and callers must always be able to fall back to
// EventStore.LoadEvents + full replay.
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, id gameid.GameId, state *ti4.GameState, seq int64) error
	GetSnapshot(ctx context.Context, id gameid.GameId) (state *ti4.GameState, seq int64, ok bool, err error)
	Invalidate(ctx context.Context, id gameid.GameId) error
}

// AccountRepository manages the OAuth-backed account identities used to
// authorize REST requests; distinct from the in-game PlayerId.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*Account, error)
	Upsert(ctx context.Context, provider, providerID, displayName string) (*Account, error)
}

// Account is a registered user identity.
type Account struct {
	ID          string
	Provider    string
	ProviderID  string
	DisplayName string
	CreatedAt   time.Time
}
