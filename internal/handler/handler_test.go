package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ti-assistant/server/internal/auth"
	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/repository"
	"github.com/ti-assistant/server/internal/service"
	"github.com/ti-assistant/server/pkg/ti4"
)

// memStore is a minimal in-memory EventStore for handler-level tests, kept
// local to this package rather than sharing the service package's own
// test double.
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

// memAccountRepo is an in-memory AccountRepository for handler tests.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*repository.Account
	byKey    map[string]string
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: map[string]*repository.Account{}, byKey: map[string]string{}}
}

func (r *memAccountRepo) FindByID(_ context.Context, id string) (*repository.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id], nil
}

func (r *memAccountRepo) FindByProviderID(_ context.Context, provider, providerID string) (*repository.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[provider+":"+providerID]
	if !ok {
		return nil, nil
	}
	return r.accounts[id], nil
}

func (r *memAccountRepo) Upsert(_ context.Context, provider, providerID, displayName string) (*repository.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := provider + ":" + providerID
	if id, ok := r.byKey[key]; ok {
		r.accounts[id].DisplayName = displayName
		return r.accounts[id], nil
	}
	id := provider + "-" + providerID
	a := &repository.Account{ID: id, Provider: provider, ProviderID: providerID, DisplayName: displayName}
	r.accounts[id] = a
	r.byKey[key] = id
	return a, nil
}

func newTestGameHandler() (*GameHandler, *memStore) {
	store := newMemStore()
	svc := service.NewGameService(store, nil, service.NoopBroadcaster{})
	return NewGameHandler(svc), store
}

func TestCreateGameAndGetGame(t *testing.T) {
	h, _ := newTestGameHandler()

	body, _ := json.Marshal(map[string]any{"name": "test game", "max_points": 10})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(body))
	req = req.WithContext(auth.SetUserIDForTest(req.Context(), "creator-1"))
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/games/"+created.ID, nil)
	getReq.SetPathValue("id", created.ID)
	getRec := httptest.NewRecorder()
	h.GetGame(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", getRec.Code, getRec.Body.String())
	}
}

func TestGetGameUnknownID(t *testing.T) {
	h, _ := newTestGameHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/deadbeef", nil)
	req.SetPathValue("id", "deadbeef")
	rec := httptest.NewRecorder()
	h.GetGame(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestApplyEventThenGetReflectsIt(t *testing.T) {
	h, _ := newTestGameHandler()

	createBody, _ := json.Marshal(map[string]any{"name": "test game", "max_points": 10})
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(createBody))
	createReq = createReq.WithContext(auth.SetUserIDForTest(createReq.Context(), "creator-1"))
	createRec := httptest.NewRecorder()
	h.CreateGame(createRec, createReq)

	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(createRec.Body.Bytes(), &created)

	eventBody, err := ti4.MarshalEvent(ti4.AddPlayer{ID: "p1", Faction: "arborec"})
	if err != nil {
		t.Fatalf("MarshalEvent: %v", err)
	}
	eventReq := httptest.NewRequest(http.MethodPost, "/api/v1/games/"+created.ID+"/events", bytes.NewReader(eventBody))
	eventReq.SetPathValue("id", created.ID)
	eventRec := httptest.NewRecorder()
	h.ApplyEvent(eventRec, eventReq)

	if eventRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", eventRec.Code, eventRec.Body.String())
	}

	var state ti4.GameState
	if err := json.Unmarshal(eventRec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(state.Players))
	}
}

func TestApplyEventRejectionStatusReflectsKind(t *testing.T) {
	h, _ := newTestGameHandler()

	createBody, _ := json.Marshal(map[string]any{"name": "test game"})
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(createBody))
	createReq = createReq.WithContext(auth.SetUserIDForTest(createReq.Context(), "creator-1"))
	createRec := httptest.NewRecorder()
	h.CreateGame(createRec, createReq)

	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(createRec.Body.Bytes(), &created)

	applyEvent := func(event ti4.Event) *httptest.ResponseRecorder {
		body, err := ti4.MarshalEvent(event)
		if err != nil {
			t.Fatalf("MarshalEvent: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/games/"+created.ID+"/events", bytes.NewReader(body))
		req.SetPathValue("id", created.ID)
		rec := httptest.NewRecorder()
		h.ApplyEvent(rec, req)
		return rec
	}

	// Starting with no players is an invalid-argument rejection: 422.
	rec := applyEvent(ti4.StartGame{SpeakerID: "nobody"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an invalid-argument rejection, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Kind   string `json:"kind"`
		GameID string `json:"gameId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode rejection envelope: %v", err)
	}
	if envelope.Kind == "" || envelope.GameID != created.ID {
		t.Fatalf("rejection envelope must carry the kind and game id, got %s", rec.Body.String())
	}

	// A duplicate faction is a domain-rule conflict with the game's state:
	// 409.
	if rec := applyEvent(ti4.AddPlayer{ID: "p1", Faction: "arborec"}); rec.Code != http.StatusOK {
		t.Fatalf("seed player: %d: %s", rec.Code, rec.Body.String())
	}
	rec = applyEvent(ti4.AddPlayer{ID: "p2", Faction: "arborec"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a domain-rule rejection, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteGameRequiresCreator(t *testing.T) {
	h, _ := newTestGameHandler()

	createBody, _ := json.Marshal(map[string]any{"name": "test game"})
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(createBody))
	createReq = createReq.WithContext(auth.SetUserIDForTest(createReq.Context(), "creator-1"))
	createRec := httptest.NewRecorder()
	h.CreateGame(createRec, createReq)

	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(createRec.Body.Bytes(), &created)

	delReq := httptest.NewRequest(http.MethodDelete, "/api/v1/games/"+created.ID, nil)
	delReq.SetPathValue("id", created.ID)
	delReq = delReq.WithContext(auth.SetUserIDForTest(delReq.Context(), "someone-else"))
	delRec := httptest.NewRecorder()
	h.DeleteGame(delRec, delReq)

	if delRec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", delRec.Code)
	}
}

func TestUserHandlerGetMe(t *testing.T) {
	repo := newMemAccountRepo()
	account, _ := repo.Upsert(context.Background(), "dev", "dev-alice", "alice")
	h := NewUserHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req = req.WithContext(auth.SetUserIDForTest(req.Context(), account.ID))
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandlerGetMeNotFound(t *testing.T) {
	repo := newMemAccountRepo()
	h := NewUserHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req = req.WithContext(auth.SetUserIDForTest(req.Context(), "nobody"))
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
