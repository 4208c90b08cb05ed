package handler

import "github.com/ti-assistant/server/internal/gameid"

// BroadcastGameEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastGameEvent(gameID gameid.GameId, eventType string, data any) {
	h.BroadcastToGame(gameID.String(), WSEvent{
		Type:   eventType,
		GameID: gameID.String(),
		Data:   data,
	})
}
