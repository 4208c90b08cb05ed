package gc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/repository"
	"github.com/ti-assistant/server/pkg/ti4"
)

type memStore struct {
	mu     sync.Mutex
	names  map[gameid.GameId]string
	events map[gameid.GameId][]repository.StoredEvent
}

func newMemStore() *memStore {
	return &memStore{names: map[gameid.GameId]string{}, events: map[gameid.GameId][]repository.StoredEvent{}}
}

func (m *memStore) CreateGame(_ context.Context, id gameid.GameId, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[id] = name
	m.events[id] = nil
	return nil
}

func (m *memStore) AppendEvent(_ context.Context, id gameid.GameId, event ti4.Event, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := int64(len(m.events[id]) + 1)
	m.events[id] = append(m.events[id], repository.StoredEvent{Seq: seq, Event: event, At: at})
	return seq, nil
}

func (m *memStore) LoadEvents(_ context.Context, id gameid.GameId) ([]repository.StoredEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.StoredEvent, len(m.events[id]))
	copy(out, m.events[id])
	return out, nil
}

func (m *memStore) DeleteLastEvent(_ context.Context, id gameid.GameId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.events[id]
	if len(evs) == 0 {
		return repository.ErrGameNotFound
	}
	m.events[id] = evs[:len(evs)-1]
	return nil
}

func (m *memStore) DeleteAllEvents(_ context.Context, id gameid.GameId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.names[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(m.names, id)
	delete(m.events, id)
	return nil
}

func (m *memStore) ListGames(_ context.Context) ([]repository.GameSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.GameSummary
	for id, name := range m.names {
		out = append(out, repository.GameSummary{ID: id, Name: name, EventCount: len(m.events[id])})
	}
	return out, nil
}

func (m *memStore) has(id gameid.GameId) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.names[id]
	return ok
}

type fakeHub struct {
	counts map[string]int
}

func (h *fakeHub) GameSubscriberCount(gameID string) int { return h.counts[gameID] }

type fakeIdleTracker struct{}

func (fakeIdleTracker) ClearIdle(context.Context, gameid.GameId) error { return nil }
func (fakeIdleTracker) SubscribeExpiredKeys(ctx context.Context) (<-chan string, func()) {
	ch := make(chan string)
	return ch, func() {}
}

func TestSweepRemovesGamesWithZeroSubscribers(t *testing.T) {
	store := newMemStore()
	idle := gameid.FromUint32(1)
	busy := gameid.FromUint32(2)
	store.CreateGame(context.Background(), idle, "idle game")
	store.CreateGame(context.Background(), busy, "busy game")

	hub := &fakeHub{counts: map[string]int{busy.String(): 2}}
	c, err := New(store, hub, fakeIdleTracker{}, "0 0 0 1 1 *")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.sweep(context.Background())

	if store.has(idle) {
		t.Fatalf("expected idle game to be removed")
	}
	if !store.has(busy) {
		t.Fatalf("expected busy game to survive the sweep")
	}
}

func TestHandleExpiredKeyIgnoresUnrelatedKeys(t *testing.T) {
	store := newMemStore()
	id := gameid.FromUint32(3)
	store.CreateGame(context.Background(), id, "game")

	hub := &fakeHub{counts: map[string]int{}}
	c, err := New(store, hub, fakeIdleTracker{}, "0 0 0 1 1 *")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.handleExpiredKey(context.Background(), "not:a:relevant:key")
	if !store.has(id) {
		t.Fatalf("unrelated key should not affect any game")
	}

	c.handleExpiredKey(context.Background(), "game:"+id.String()+":idle")
	if store.has(id) {
		t.Fatalf("expected game to be removed after idle key expiry")
	}
}
