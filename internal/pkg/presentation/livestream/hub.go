package livestream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub keeps the set of connected websocket viewers and fans snapshots out to
// them. Slow clients that fill their buffer are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	closed  bool

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func encode(kind string, payload any) ([]byte, error) {
	return json.Marshal(envelope{Type: kind, Payload: payload})
}

// Observe broadcasts a snapshot. It has the signature of a dashboard listener.
func (h *Hub) Observe(ctx context.Context, snapshot types.Snapshot) {
	b, err := encode("snapshot", snapshot)
	if err != nil {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Msg("failed to marshal snapshot")
		return
	}

	h.broadcast(b)
}

func (h *Hub) broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			c.log.Info().Msg("websocket client too slow, dropping it")
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) deliver(c *client, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}

	select {
	case c.send <- message:
	default:
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c] = true
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// Handler upgrades the request to a websocket. connect is called once the
// client is registered and its return value, if not nil, is sent as the first
// snapshot. disconnect is called when the connection ends.
func (h *Hub) Handler(connect func(ctx context.Context) any, disconnect func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logging.GetLoggerFromContext(ctx)

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, sendBuffer),
			log:  log.With().Str("remote", conn.RemoteAddr().String()).Logger(),
		}

		if !h.register(c) {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			conn.Close()
			return
		}

		c.log.Debug().Msg("websocket client connected")

		if connect != nil {
			if initial := connect(ctx); initial != nil {
				if b, err := encode("snapshot", initial); err == nil {
					h.deliver(c, b)
				}
			}
		}

		go c.writePump()
		c.readPump()

		if disconnect != nil {
			disconnect()
		}

		c.log.Debug().Msg("websocket client disconnected")
	}
}
