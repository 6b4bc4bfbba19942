package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	ws "github.com/PranavAK3704/OneBox/internal/websocket"
)

// WebSocketHandler handles the /api/v1/ws endpoint for real-time ingestion
// events.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// For now, allow all origins. This server is expected to be used
		// behind a reverse proxy in a trusted environment.
		return true
	},
}

// Handle upgrades the HTTP connection to a WebSocket and registers it with the
// Hub. The connection only carries server-to-client events; incoming frames
// are read and discarded to service control messages until the client goes
// away.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		log.Printf("WebSocketHandler: Failed to upgrade connection: %v", err)
		return
	}

	client := h.hub.Register(conn)
	if client == nil {
		return
	}
	defer h.hub.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocketHandler: Connection closed unexpectedly: %v", err)
			}
			return
		}
	}
}
