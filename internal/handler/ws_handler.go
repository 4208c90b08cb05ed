package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gorilla/websocket"
	"github.com/ti-assistant/server/internal/auth"
	"github.com/ti-assistant/server/internal/catalog"
	"github.com/ti-assistant/server/internal/gameid"
	"github.com/ti-assistant/server/internal/milty"
	"github.com/ti-assistant/server/internal/service"
	"github.com/ti-assistant/server/pkg/ti4"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware; tighten in production
	},
}

// WSHandler handles WebSocket connections: it authenticates the upgrade,
// then translates each inbound client message into the matching engine or
// lobby operation. State fan-out after an accepted event rides the hub via
// the service's Broadcaster, so every subscriber (the sender included)
// observes the same totally-ordered snapshot sequence.
type WSHandler struct {
	hub      *Hub
	jwtMgr   *auth.JWTManager
	gameSvc  *service.GameService
	importer *milty.Importer
}

// NewWSHandler creates a WSHandler. importer may be nil to disable milty
// imports over this channel.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager, gameSvc *service.GameService, importer *milty.Importer) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr, gameSvc: gameSvc, importer: importer}
}

// ServeWS handles GET /api/v1/ws — upgrades to WebSocket.
// Auth via ?token= query parameter (WebSocket can't send headers).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, `{"error":"missing token parameter"}`, http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtMgr.ValidateAccess(tokenStr)
	if err != nil {
		http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:        conn,
		userID:      claims.UserID,
		displayName: claims.DisplayName,
		send:        make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	// Send a welcome message telling the client who it signed in as (the
	// display name pre-fills the in-game player name), followed by the
	// static reference data every client needs before it can render a
	// lobby (factions, colors, strategy cards).
	welcome, _ := json.Marshal(WSEvent{Type: EventConnected, Data: map[string]string{
		"accountId":   client.userID,
		"displayName": client.displayName,
	}})
	client.send <- welcome
	h.reply(client, WSEvent{Type: EventGameOptions, Data: gameOptions()})

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Str("userId", claims.UserID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump reads messages from the WebSocket connection.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("userId", c.userID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("userId", c.userID).Msg("WebSocket unexpected close")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.reply(c, WSEvent{Type: EventEventRejected, Data: "malformed message"})
			continue
		}

		switch msg.Action {
		case "subscribe", "join_game":
			h.handleJoin(c, msg.GameID)
		case "unsubscribe":
			if msg.GameID != "" {
				h.hub.Unsubscribe(c, msg.GameID)
			}
		case "new_game":
			h.handleNewGame(c, msg.NewGame)
		case "event":
			h.handleEvent(c, msg)
		case "undo":
			h.handleUndo(c, msg.GameID)
		default:
			h.reply(c, WSEvent{Type: EventEventRejected, Data: "unknown action " + msg.Action})
		}
	}
}

// gameOptions bundles the static reference catalog a client needs to build
// a game-creation UI. The catalog never changes after Init, so the same
// payload goes to every connection.
func gameOptions() map[string]any {
	factions := make([]map[string]any, 0, len(catalog.AllFactions))
	for _, f := range catalog.AllFactions {
		factions = append(factions, map[string]any{
			"id":        f,
			"name":      f.Name(),
			"expansion": f.Expansion(),
		})
	}
	return map[string]any{
		"factions":      factions,
		"colors":        catalog.AllColors,
		"strategyCards": catalog.AllStrategyCards,
	}
}

// reply queues a message for one client only, dropping it if the client's
// send buffer is full (the client can resynchronize by re-joining).
func (h *WSHandler) reply(c *WSConn, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// handleJoin attaches the client to a lobby, loading the game from the
// durable log if needed, and replies with the latest snapshot.
func (h *WSHandler) handleJoin(c *WSConn, rawID string) {
	id, err := gameid.Parse(rawID)
	if err != nil {
		h.reply(c, WSEvent{Type: EventNotFound, GameID: rawID})
		return
	}
	state, err := h.gameSvc.GetState(context.Background(), id)
	if err != nil {
		h.reply(c, WSEvent{Type: EventNotFound, GameID: rawID})
		return
	}
	h.hub.Subscribe(c, id.String())
	h.reply(c, WSEvent{Type: EventJoinedGame, GameID: id.String()})
	h.reply(c, WSEvent{Type: EventStateChanged, GameID: id.String(), Data: state})
}

// handleNewGame allocates a lobby and seeds it with its synthetic initial
// event: SetSettings for a custom config, ImportFromMilty for a draft.
func (h *WSHandler) handleNewGame(c *WSConn, req *NewGameRequest) {
	if req == nil || (req.Custom == nil && req.Milty == nil) {
		h.reply(c, WSEvent{Type: EventEventRejected, Data: "new_game needs a custom or milty config"})
		return
	}
	ctx := context.Background()
	maxPoints := req.MaxPoints
	if maxPoints == 0 {
		maxPoints = 10
	}

	var initial ti4.Event
	settings := ti4.GameSettings{MaxPoints: maxPoints}
	name := req.Name
	switch {
	case req.Custom != nil:
		settings.Expansions = catalog.Expansions{
			ProphecyOfKings: req.Custom.ProphecyOfKings,
			Codex1:          req.Custom.Codex1,
			Codex2:          req.Custom.Codex2,
			Codex3:          req.Custom.Codex3,
		}
		initial = ti4.SetSettings{Settings: settings}
	case req.Milty != nil:
		if h.importer == nil {
			h.reply(c, WSEvent{Type: EventEventRejected, Data: "milty import is not enabled"})
			return
		}
		result, err := h.importer.Import(ctx, req.Milty.MiltyGameID)
		if err != nil {
			h.reply(c, WSEvent{Type: EventEventRejected, Data: err.Error()})
			return
		}
		if name == "" {
			name = result.GameName
		}
		settings.Expansions = result.Expansions
		initial = ti4.ImportFromMilty{
			MaxPoints:  maxPoints,
			GameName:   name,
			Players:    result.Players,
			Expansions: result.Expansions,
			TTSString:  result.TTSString,
		}
	}

	id, err := h.gameSvc.CreateGame(ctx, name, c.userID, settings)
	if err != nil {
		h.reply(c, WSEvent{Type: EventEventRejected, Data: err.Error()})
		return
	}
	if _, err := h.gameSvc.ApplyEvent(ctx, id, initial, time.Now()); err != nil {
		h.reply(c, WSEvent{Type: EventEventRejected, GameID: id.String(), Data: err.Error()})
		return
	}
	h.hub.Subscribe(c, id.String())
	h.reply(c, WSEvent{Type: EventJoinedGame, GameID: id.String()})
	state, err := h.gameSvc.GetState(ctx, id)
	if err == nil {
		h.reply(c, WSEvent{Type: EventStateChanged, GameID: id.String(), Data: state})
	}
}

// handleEvent decodes and applies one game event. A reducer rejection is
// reported back to the sender only; an acceptance reaches every subscriber
// through the hub broadcast the service performs after persisting.
func (h *WSHandler) handleEvent(c *WSConn, msg ClientMessage) {
	id, err := gameid.Parse(msg.GameID)
	if err != nil {
		h.reply(c, WSEvent{Type: EventNotFound, GameID: msg.GameID})
		return
	}
	event, err := ti4.UnmarshalEvent(msg.Event)
	if err != nil {
		h.reply(c, WSEvent{Type: EventEventRejected, GameID: msg.GameID, Data: err.Error()})
		return
	}
	if _, err := h.gameSvc.ApplyEvent(context.Background(), id, event, time.Now()); err != nil {
		h.reply(c, WSEvent{Type: EventEventRejected, GameID: msg.GameID, Data: err.Error()})
		return
	}
}

// handleUndo pops the last event off the game's log and broadcasts the
// rebuilt state.
func (h *WSHandler) handleUndo(c *WSConn, rawID string) {
	id, err := gameid.Parse(rawID)
	if err != nil {
		h.reply(c, WSEvent{Type: EventNotFound, GameID: rawID})
		return
	}
	if _, err := h.gameSvc.Undo(context.Background(), id); err != nil {
		h.reply(c, WSEvent{Type: EventEventRejected, GameID: rawID, Data: err.Error()})
		return
	}
}

// writePump writes messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
