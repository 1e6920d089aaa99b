package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pmmsinno/lightrace/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Per-client outbound buffer. The session broadcasts while holding its
	// lock, so a send can never block; a client that falls this far behind is
	// dropped.
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Players join by scanning a QR code from arbitrary devices, so the
		// origin cannot be pinned.
		return true
	},
}

// Envelope frames every message in both directions: clients switch on Type.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub maintains the set of active connections and implements the session's
// Broadcaster contract: room broadcast to displays plus per-connection
// addressing.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*Client
	displays map[string]*Client

	svc service.GameService
	log zerolog.Logger
}

// NewHub creates a hub with no service bound yet.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		displays: make(map[string]*Client),
		log:      log,
	}
}

// Bind attaches the game service. The hub and the session reference each
// other, so the service is bound after both exist.
func (h *Hub) Bind(svc service.GameService) {
	h.svc = svc
}

// ServeWS upgrades an HTTP request and starts the client pumps. Every
// connection gets a fresh id; it becomes the player id on joinGame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   uuid.NewString(),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Str("conn", client.id).Int("total", total).Msg("client connected")

	go client.writePump()
	go client.readPump()
}

// ToDisplay broadcasts an event to every connected display. Called by the
// session while holding its lock; must not block.
func (h *Hub) ToDisplay(event string, payload any) {
	data, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("marshal broadcast failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.displays {
		h.deliverLocked(c, data)
	}
}

// ToPlayer sends an event to one connection, player or display.
func (h *Hub) ToPlayer(id, event string, payload any) {
	data, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("marshal message failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		h.deliverLocked(c, data)
	}
}

// deliverLocked queues a frame without blocking; a client whose buffer is full
// is dropped. Hub lock held.
func (h *Hub) deliverLocked(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.log.Warn().Str("conn", c.id).Msg("client buffer full, dropping connection")
		h.removeLocked(c)
	}
}

// removeLocked detaches a client from the maps and closes its send channel,
// which ends the write pump. Hub lock held.
func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	delete(h.displays, c.id)
	close(c.send)
}

// unregister is the read-pump exit path.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	h.removeLocked(c)
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Str("conn", c.id).Int("total", total).Msg("client disconnected")
}

// promoteDisplay moves a connection into the display room.
func (h *Hub) promoteDisplay(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	c.display = true
	h.displays[c.id] = c
}
