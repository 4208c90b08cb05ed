//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/testutil"
	"github.com/ti-assistant/server/pkg/ti4"
)

func TestAppendAndLoadEventsRoundTrip(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.CleanupDB(t, db)
	store := NewEventStore(db)
	ctx := context.Background()
	id := gameid.FromUint32(100)

	if err := store.CreateGame(ctx, id, "test game"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	seq, err := store.AppendEvent(ctx, id, ti4.AddPlayer{ID: "alice", Faction: "arborec"}, now)
	if err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if seq != 1 {
		t.Fatalf("seq = %d, want 1", seq)
	}

	events, err := store.LoadEvents(ctx, id)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	add, ok := events[0].Event.(ti4.AddPlayer)
	if !ok || add.ID != "alice" {
		t.Fatalf("unexpected decoded event: %+v", events[0].Event)
	}
}

func TestLoadSeededFixtureInSequenceOrder(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.CleanupDB(t, db)
	store := NewEventStore(db)
	ctx := context.Background()
	id := gameid.FromUint32(102)

	testutil.SeedGame(t, db, id, "seeded game", []ti4.Event{
		ti4.AddPlayer{ID: "alice", Faction: "arborec"},
		ti4.AddPlayer{ID: "bob", Faction: "winnu"},
		ti4.AddPlayer{ID: "carol", Faction: "clan_of_saar"},
	})

	events, err := store.LoadEvents(ctx, id)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []ti4.PlayerId{"alice", "bob", "carol"} {
		add, ok := events[i].Event.(ti4.AddPlayer)
		if !ok || add.ID != want {
			t.Fatalf("event %d: expected add_player %s, got %+v", i, want, events[i].Event)
		}
		if events[i].Seq != int64(i+1) {
			t.Fatalf("event %d: seq = %d, want %d", i, events[i].Seq, i+1)
		}
	}
}

func TestDeleteLastEvent(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.CleanupDB(t, db)
	store := NewEventStore(db)
	ctx := context.Background()
	id := gameid.FromUint32(101)

	if err := store.CreateGame(ctx, id, "test game"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	now := time.Now().UTC()
	if _, err := store.AppendEvent(ctx, id, ti4.AddPlayer{ID: "alice", Faction: "arborec"}, now); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if err := store.DeleteLastEvent(ctx, id); err != nil {
		t.Fatalf("DeleteLastEvent: %v", err)
	}
	events, err := store.LoadEvents(ctx, id)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after delete, got %d", len(events))
	}
}
