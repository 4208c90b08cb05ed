// Command democtl loads demo games into Postgres so the assistant ships
// with a set of ready-to-browse example games, and can export a live
// game's event log back out to the same file format for capturing new
// fixtures.
//
// Demo game files are named "<name>__<gameid>.json" and contain a JSON
// array of {"event": {...}, "at": "<RFC3339 timestamp>"} entries in
// sequence order.
//
// Usage:
//
//	go run ./cmd/democtl load --dir demo_games --db postgres://...
//	go run ./cmd/democtl export --id deadbeef --name my-game --dir demo_games --db postgres://...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/ti-assistant/server/internal/catalog"
	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/repository"
	"github.com/ti-assistant/server/internal/repository/postgres"
	"github.com/ti-assistant/server/pkg/ti4"
)

// demoEntry is one row of a demo game fixture file.
type demoEntry struct {
	Event json.RawMessage `json:"event"`
	At    time.Time       `json:"at"`
}

func main() {
	catalog.Init()
	if len(os.Args) < 2 {
		log.Fatal("usage: democtl <load|export> [flags]")
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "load":
		runLoad(args)
	case "export":
		runExport(args)
	default:
		log.Fatalf("unknown subcommand %q (want load or export)", cmd)
	}
}

func runLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	dir := fs.String("dir", os.Getenv("DEMO_GAMES_DIR"), "Directory of demo game fixtures")
	dbURL := fs.String("db", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	overwrite := fs.Bool("overwrite", false, "Replace an existing demo game's event log instead of skipping it")
	skipDB := fs.Bool("skip-db-insert", false, "Parse and validate fixtures without writing them")
	fs.Parse(args)

	if *dir == "" {
		log.Fatal("--dir or DEMO_GAMES_DIR is required")
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read demo games dir: %v", err)
	}

	type demoGame struct {
		name   string
		id     gameid.GameId
		events []repository.StoredEvent
	}

	var games []demoGame
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		name, id, err := parseDemoFilename(e.Name())
		if err != nil {
			log.Printf("WARN: skip %s: %v", e.Name(), err)
			continue
		}

		events, err := loadDemoFile(filepath.Join(*dir, e.Name()))
		if err != nil {
			log.Printf("WARN: skip %s: %v", e.Name(), err)
			continue
		}

		// Replay the fixture in advisory mode before it is ever written:
		// an event the reducer rejects is dropped from the fixture, not
		// cause to skip the whole game, and only the accepted events reach
		// the database so a later authoritative replay cannot fail.
		game := ti4.NewGame(name, ti4.GameSettings{})
		kept := make([]repository.StoredEvent, 0, len(events))
		for _, ev := range events {
			if game.ApplyAdvisory(ev.Event, ev.At) {
				kept = append(kept, ev)
			}
		}
		if dropped := len(events) - len(kept); dropped > 0 {
			log.Printf("WARN: %s: discarded %d rejected event(s)", e.Name(), dropped)
		}

		games = append(games, demoGame{name: name, id: id, events: kept})
	}

	if *skipDB {
		log.Printf("parsed %d demo games, skipping db insert (--skip-db-insert)", len(games))
		return
	}

	if *dbURL == "" {
		log.Fatal("--db or DATABASE_URL is required")
	}
	db, err := postgres.Connect(*dbURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()
	store := postgres.NewEventStore(db)

	ctx := context.Background()
	existing, err := store.ListGames(ctx)
	if err != nil {
		log.Fatalf("list existing games: %v", err)
	}
	existingByID := make(map[gameid.GameId]bool, len(existing))
	for _, g := range existing {
		existingByID[g.ID] = true
	}

	inserted := 0
	for _, g := range games {
		if existingByID[g.id] {
			if !*overwrite {
				log.Printf("skip %s (id=%s): already present", g.name, g.id)
				continue
			}
			if err := store.DeleteAllEvents(ctx, g.id); err != nil {
				log.Printf("ERROR: delete existing %s (id=%s): %v", g.name, g.id, err)
				continue
			}
		}

		if err := store.CreateGame(ctx, g.id, g.name); err != nil {
			log.Printf("ERROR: create %s (id=%s): %v", g.name, g.id, err)
			continue
		}
		ok := true
		for _, ev := range g.events {
			if _, err := store.AppendEvent(ctx, g.id, ev.Event, ev.At); err != nil {
				log.Printf("ERROR: append event for %s (id=%s): %v", g.name, g.id, err)
				ok = false
				break
			}
		}
		if ok {
			inserted++
			log.Printf("loaded %s (id=%s, %d events)", g.name, g.id, len(g.events))
		}
	}
	log.Printf("done: loaded %d/%d demo games", inserted, len(games))
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	id := fs.String("id", "", "Game id to export")
	name := fs.String("name", "", "Display name to use in the exported filename")
	dir := fs.String("dir", os.Getenv("DEMO_GAMES_DIR"), "Directory to write the fixture into")
	dbURL := fs.String("db", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	fs.Parse(args)

	if *id == "" || *name == "" || *dir == "" {
		log.Fatal("--id, --name, and --dir (or DEMO_GAMES_DIR) are required")
	}
	gid, err := gameid.Parse(*id)
	if err != nil {
		log.Fatalf("parse --id: %v", err)
	}
	if *dbURL == "" {
		log.Fatal("--db or DATABASE_URL is required")
	}

	db, err := postgres.Connect(*dbURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()
	store := postgres.NewEventStore(db)

	events, err := store.LoadEvents(context.Background(), gid)
	if err != nil {
		log.Fatalf("load events for %s: %v", gid, err)
	}

	out := make([]demoEntry, len(events))
	for i, ev := range events {
		payload, err := ti4.MarshalEvent(ev.Event)
		if err != nil {
			log.Fatalf("marshal event %d: %v", ev.Seq, err)
		}
		out[i] = demoEntry{Event: payload, At: ev.At}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal fixture: %v", err)
	}

	path := filepath.Join(*dir, fmt.Sprintf("%s__%s.json", *name, gid.String()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("write fixture: %v", err)
	}
	log.Printf("exported %s (%d events) -> %s", gid, len(events), path)
}

// parseDemoFilename splits "<name>__<gameid>.json" into its name and id.
func parseDemoFilename(fileName string) (string, gameid.GameId, error) {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	name, idStr, ok := strings.Cut(base, "__")
	if !ok {
		return "", gameid.Zero, fmt.Errorf("expected \"<name>__<gameid>.json\", got %q", fileName)
	}
	id, err := gameid.Parse(idStr)
	if err != nil {
		return "", gameid.Zero, fmt.Errorf("invalid gameid in filename: %w", err)
	}
	return name, id, nil
}

func loadDemoFile(path string) ([]repository.StoredEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var entries []demoEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]repository.StoredEvent, len(entries))
	for i, e := range entries {
		event, err := ti4.UnmarshalEvent(e.Event)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out[i] = repository.StoredEvent{Seq: int64(i + 1), Event: event, At: e.At}
	}
	return out, nil
}
