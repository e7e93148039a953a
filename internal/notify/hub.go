package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gymflow/gymflow-backend/pkg/logger"
)

// Event is the small opaque payload pushed over a tenant's room, per
// spec.md §6's WebSocket gateway contract.
type Event struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub is the real-time push interface the Notification Hub fans out to:
// a room-per-tenant registry of WebSocket clients. Emit is best-effort —
// a client with a full send buffer is dropped silently rather than
// blocking the write path.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]*client // gymID -> clientID -> client

	logger *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[string]*client),
		logger:  log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a WebSocket connection and joins
// the gym's room for the connection's lifetime.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gymID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, 64)}
	h.join(gymID, c)
	go h.writePump(gymID, c)
	go h.readPump(gymID, c)
	return nil
}

func (h *Hub) join(gymID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[gymID] == nil {
		h.clients[gymID] = make(map[string]*client)
	}
	h.clients[gymID][c.id] = c
}

func (h *Hub) leave(gymID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[gymID] == nil {
		return
	}
	delete(h.clients[gymID], c.id)
	close(c.send)
	if len(h.clients[gymID]) == 0 {
		delete(h.clients, gymID)
	}
}

func (h *Hub) readPump(gymID string, c *client) {
	defer func() {
		h.leave(gymID, c)
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(gymID string, c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Emit pushes {action, payload} to every client connected to the gym's
// room. Best-effort: delivery failures (full buffer, no connected
// clients) never return an error to the caller.
func (h *Hub) Emit(gymID, action string, payload interface{}) {
	data, err := json.Marshal(Event{Action: action, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Msg("notify hub: failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[gymID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("gym_id", gymID).Str("client_id", c.id).Msg("notify hub: client send buffer full, dropping event")
		}
	}
}
