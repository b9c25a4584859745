// Package notify pushes freshly stored notifications to connected dashboard
// and storefront sockets. Delivery is fire-and-forget: the stored record is
// the source of truth and clients re-list on reconnect.
package notify

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[string]*client
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub builds a hub whose handshake accepts the given browser origins.
// An empty list or one containing "*" accepts any origin.
func NewHub(log *zap.Logger, origins []string) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:  map[string]map[string]*client{},
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(origins, log)},
		log:      log,
	}
}

// originChecker admits requests without an Origin header. Browsers always
// send one, so those come from native clients holding a token.
func originChecker(origins []string, log *zap.Logger) func(*http.Request) bool {
	allowed := map[string]bool{}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[strings.ToLower(o)] = true
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[strings.ToLower(origin)] {
			return true
		}
		log.Warn("websocket origin rejected", zap.String("origin", origin))
		return false
	}
}

// Subscribers returns the number of open sockets for recipient.
func (h *Hub) Subscribers(recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[recipient])
}

// Publish queues msg for every socket of recipient. Slow sockets whose
// buffer is full miss the message.
func (h *Hub) Publish(recipient string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal push message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[recipient] {
		select {
		case c.send <- payload:
		default:
			h.log.Warn("push buffer full, dropping message", zap.String("recipient", recipient), zap.String("client", c.id))
		}
	}
}

// Serve upgrades the request and blocks until the socket closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, recipient string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(recipient, c)
	h.log.Debug("socket connected", zap.String("recipient", recipient), zap.String("client", c.id))

	done := make(chan struct{})
	go h.writeLoop(c, done)
	h.readLoop(c)

	h.unregister(recipient, c)
	close(done)
	_ = conn.Close()
	h.log.Debug("socket closed", zap.String("recipient", recipient), zap.String("client", c.id))
	return nil
}

func (h *Hub) register(recipient string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[recipient] == nil {
		h.clients[recipient] = map[string]*client{}
	}
	h.clients[recipient][c.id] = c
}

func (h *Hub) unregister(recipient string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[recipient], c.id)
	if len(h.clients[recipient]) == 0 {
		delete(h.clients, recipient)
	}
}

// readLoop discards inbound frames; it exists to observe pongs and close.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}
