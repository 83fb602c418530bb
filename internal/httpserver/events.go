// internal/httpserver/events.go
//
// Websocket fan-out for gameScoreSubmitted events. A daily-progress
// widget (or anything else) subscribes to /events and receives one
// message per terminal score submission, instead of polling the
// suggestions endpoint.

package httpserver

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ScoreEvent is the broadcast payload.
type ScoreEvent struct {
	Type    string `json:"type"` // always "gameScoreSubmitted"
	GameID  string `json:"gameId"`
	Score   int    `json:"score"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// subscriber owns one websocket connection. All writes go through the
// send channel into a single writePump goroutine; the connection is
// never written from two goroutines at once.
type subscriber struct {
	conn *websocket.Conn
	send chan ScoreEvent
}

func (c *subscriber) writePump() {
	defer c.conn.Close()

	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// Hub tracks websocket subscribers and broadcasts events to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*subscriber]struct{}
}

// NewHub constructs an empty hub. The origin check is delegated to
// the CORS layer; the upgrader accepts any origin here.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers the subscriber.
// The read loop exists only to detect disconnects; subscribers are
// write-only.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &subscriber{conn: conn, send: make(chan ScoreEvent, 8)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// drop unregisters a subscriber and closes its send channel, which
// ends its writePump. Safe to call more than once.
func (h *Hub) drop(c *subscriber) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Broadcast queues the event for every subscriber. Sends are
// non-blocking: a subscriber whose buffer is full is disconnected
// rather than allowed to stall score handling.
func (h *Hub) Broadcast(ev ScoreEvent) {
	ev.Type = "gameScoreSubmitted"

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
