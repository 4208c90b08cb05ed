// Package postgres implements the repository ports on top of
// database/sql + lib/pq: hand-written SQL, explicit transactions,
// ON CONFLICT upserts, no ORM.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/repository"
	"github.com/ti-assistant/server/pkg/ti4"
)

// EventStore persists the append-only event log: one `game` row per lobby
// and one `game_event` row per accepted event, matching the (game, seq)
// layout of the persistence design.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates an EventStore.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// CreateGame inserts the game row. ON CONFLICT DO NOTHING makes this
// idempotent, so a retried "create" after a transient network error never
// errors.
func (s *EventStore) CreateGame(ctx context.Context, id gameid.GameId, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game (id, name, created_at) VALUES ($1, $2, now()) ON CONFLICT (id) DO NOTHING`,
		id.String(), name,
	)
	if err != nil {
		return fmt.Errorf("postgres: create game: %w", err)
	}
	return nil
}

// AppendEvent appends one event inside a transaction: it reads the current
// max sequence for the game, inserts at max+1, and commits. The
// (game_id, seq) unique constraint plus this read-then-write means two
// concurrent appends for the same game would conflict — acceptable because
// the Session Hub already serializes writers per game with its own lock,
// so this path never actually races in practice.
func (s *EventStore) AppendEvent(ctx context.Context, id gameid.GameId, event ti4.Event, at time.Time) (int64, error) {
	payload, err := ti4.MarshalEvent(event)
	if err != nil {
		return 0, fmt.Errorf("postgres: marshal event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	var nextSeq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM game_event WHERE game_id = $1`, id.String(),
	).Scan(&nextSeq)
	if err != nil {
		return 0, fmt.Errorf("postgres: compute next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_event (game_id, seq, kind, payload, at) VALUES ($1, $2, $3, $4, $5)`,
		id.String(), nextSeq, event.Kind(), payload, at,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return nextSeq, nil
}

// LoadEvents returns every stored event for id, oldest first.
func (s *EventStore) LoadEvents(ctx context.Context, id gameid.GameId) ([]repository.StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, payload, at FROM game_event WHERE game_id = $1 ORDER BY seq ASC`, id.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: load events: %w", err)
	}
	defer rows.Close()

	var out []repository.StoredEvent
	for rows.Next() {
		var seq int64
		var payload []byte
		var at time.Time
		if err := rows.Scan(&seq, &payload, &at); err != nil {
			return nil, fmt.Errorf("postgres: scan event: %w", err)
		}
		event, err := ti4.UnmarshalEvent(payload)
		if err != nil {
			return nil, fmt.Errorf("postgres: decode event at seq %d: %w", seq, err)
		}
		out = append(out, repository.StoredEvent{Seq: seq, Event: event, At: at})
	}
	return out, rows.Err()
}

// DeleteLastEvent removes the highest-seq row for id.
func (s *EventStore) DeleteLastEvent(ctx context.Context, id gameid.GameId) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM game_event WHERE game_id = $1 AND seq = (SELECT MAX(seq) FROM game_event WHERE game_id = $1)`,
		id.String())
	if err != nil {
		return fmt.Errorf("postgres: delete last event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("postgres: no events to delete for game %s", id)
	}
	return nil
}

// DeleteAllEvents removes every event row and the game row itself.
func (s *EventStore) DeleteAllEvents(ctx context.Context, id gameid.GameId) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM game_event WHERE game_id = $1`, id.String()); err != nil {
		return fmt.Errorf("postgres: delete events: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM game WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("postgres: delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrGameNotFound
	}
	return tx.Commit()
}

// ListGames returns a summary row per game, most recently created first.
func (s *EventStore) ListGames(ctx context.Context) ([]repository.GameSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.created_at, COUNT(e.seq)
		 FROM game g LEFT JOIN game_event e ON e.game_id = g.id
		 GROUP BY g.id, g.name, g.created_at
		 ORDER BY g.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list games: %w", err)
	}
	defer rows.Close()

	var out []repository.GameSummary
	for rows.Next() {
		var idStr, name string
		var createdAt time.Time
		var count int
		if err := rows.Scan(&idStr, &name, &createdAt, &count); err != nil {
			return nil, fmt.Errorf("postgres: scan game summary: %w", err)
		}
		id, err := gameid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse stored game id %q: %w", idStr, err)
		}
		out = append(out, repository.GameSummary{ID: id, Name: name, CreatedAt: createdAt, EventCount: count})
	}
	return out, rows.Err()
}
