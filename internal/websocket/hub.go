package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client wraps a WebSocket connection. gorilla/websocket allows at most one
// concurrent writer per connection, so every write goes through the client's
// write mutex; account pipelines broadcast from independent goroutines.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Hub manages the active WebSocket connections of the dashboard UI and
// broadcasts ingestion events to all of them. Safe for concurrent use by the
// account pipelines.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	max     int
}

// NewHub creates a new Hub with a connection limit.
func NewHub(max int) *Hub {
	if max <= 0 {
		max = 10
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		max:     max,
	}
}

// Register adds a WebSocket connection. If the limit is exceeded, the new
// connection is closed and nil is returned.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.max {
		log.Printf("websocket: connection limit (%d) exceeded, closing new connection", h.max)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many connections"),
			// Zero deadline means best effort.
			time.Time{},
		)
		_ = conn.Close()
		return nil
	}

	client := &Client{conn: conn}
	h.clients[client] = struct{}{}
	return client
}

// Unregister removes a client and closes its connection.
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}

	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()

	_ = client.conn.Close()
}

// Broadcast sends a message to every connected client. Clients that fail to
// receive are unregistered best-effort.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.write(websocket.TextMessage, message); err != nil {
			log.Printf("websocket: failed to write message: %v", err)
			go h.Unregister(client)
		}
	}
}

// ActiveConnections returns the number of connected clients.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
