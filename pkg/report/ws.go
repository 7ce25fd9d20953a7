package report

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"maslow-go/pkg/mlog"
)

// WSHub is a StatusSink that fans reports and status snapshots out to
// every connected websocket client, the same read/write-pump shape the
// teacher's moonraker server uses for its WebSocket clients, narrowed
// down to this core's one-way status push (no inbound JSON-RPC dispatch
// — a connected UI here only listens).
type WSHub struct {
	log      *mlog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewWSHub builds an empty hub.
func NewWSHub() *WSHub {
	return &WSHub{
		log:      mlog.New("report.ws"),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024, CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*wsClient]struct{}),
	}
}

// HandleUpgrade upgrades an HTTP request to a websocket connection and
// registers it as a report subscriber. Wire this to an http.ServeMux
// route such as "/status".
func (h *WSHub) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 32), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go h.readUntilClosed(c)
}

func (h *WSHub) readUntilClosed(c *wsClient) {
	defer h.remove(c)
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

type wsEnvelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
	Status  Status `json:"status,omitempty"`
}

// Report pushes a human-readable message to every connected client
// (spec §7 "kinematics divergence — logged through reporting
// collaborator").
func (h *WSHub) Report(message string) {
	h.broadcast(wsEnvelope{Kind: "message", Message: message})
}

// PushStatus pushes a position/state snapshot to every connected
// client.
func (h *WSHub) PushStatus(st Status) {
	h.broadcast(wsEnvelope{Kind: "status", Status: st})
}

func (h *WSHub) broadcast(env wsEnvelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Warn("failed to encode report envelope: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.trySend(data)
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *wsClient) trySend(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
		// Slow consumer: drop rather than block the broadcaster.
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
