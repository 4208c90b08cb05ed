package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket. The hub is a thin fan-out: most events
// just carry the freshly materialized GameState after a successful event
// application, letting the client re-render from one shape rather than
// patching in per-field deltas.
const (
	EventConnected     = "connected"
	EventStateChanged  = "state_changed"
	EventEventRejected = "event_rejected"
	EventGameDeleted   = "game_deleted"
	EventJoinedGame    = "joined_game"
	EventNotFound      = "not_found"
	EventGameOptions   = "game_options"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client. Action
// selects the operation; the remaining fields are per-action payloads:
// join_game/subscribe/unsubscribe/undo/event use GameID, event additionally
// carries the {kind,payload} event envelope, and new_game carries either a
// custom config or a milty draft reference.
type ClientMessage struct {
	Action string          `json:"action"` // join_game | subscribe | unsubscribe | new_game | event | undo
	GameID string          `json:"game_id,omitempty"`
	Event  json.RawMessage `json:"event,omitempty"`

	NewGame *NewGameRequest `json:"new_game,omitempty"`
}

// NewGameRequest configures a freshly created game: either a custom
// configuration or a milty draft import, matching the two gameConfig arms
// of the wire protocol.
type NewGameRequest struct {
	Name      string `json:"name"`
	MaxPoints int    `json:"max_points"`

	Custom *CustomGameConfig `json:"custom,omitempty"`
	Milty  *MiltyGameConfig  `json:"milty,omitempty"`
}

// CustomGameConfig selects the enabled content packs for a manual lobby.
type CustomGameConfig struct {
	ProphecyOfKings bool `json:"pok"`
	Codex1          bool `json:"cod1"`
	Codex2          bool `json:"cod2"`
	Codex3          bool `json:"cod3"`
}

// MiltyGameConfig seeds a lobby from a completed external milty draft.
type MiltyGameConfig struct {
	MiltyGameID string `json:"miltyGameId"`
}

// WSConn wraps a WebSocket connection with its user and subscriptions.
type WSConn struct {
	conn        *websocket.Conn
	userID      string
	displayName string
	send        chan []byte
}

// Hub manages WebSocket connections and game-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	games       map[string]map[*WSConn]bool // gameID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		games:       make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for gameID, conns := range h.games {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a game channel.
func (h *Hub) Subscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*WSConn]bool)
	}
	h.games[gameID][c] = true
}

// Unsubscribe removes a connection from a game channel.
func (h *Hub) Unsubscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.games[gameID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
}

// BroadcastToGame sends an event to all connections subscribed to a game.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.games[gameID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("gameId", gameID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to a specific user across all their connections.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if c.userID == userID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GameSubscriberCount returns the number of connections subscribed to a game.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
