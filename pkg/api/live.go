package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"saferoute/pkg/reports"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// LiveMessage is pushed to every /reports/live subscriber when a report
// is stored.
type LiveMessage struct {
	Type   string         `json:"type"`
	Report reports.Report `json:"report"`
}

type liveClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// LiveHub fans new reports out to websocket subscribers. Slow subscribers
// whose buffer is full are dropped.
type LiveHub struct {
	mu       sync.RWMutex
	clients  map[string]*liveClient
	upgrader websocket.Upgrader
}

// NewLiveHub returns a hub accepting connections from origin, or from any
// origin when it is empty.
func NewLiveHub(origin string) *LiveHub {
	return &LiveHub{
		clients: make(map[string]*liveClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return origin == "" || r.Header.Get("Origin") == origin
			},
		},
	}
}

// Len returns the number of connected subscribers.
func (h *LiveHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *LiveHub) add(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *LiveHub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

// Publish broadcasts a stored report.
func (h *LiveHub) Publish(r reports.Report) {
	msg, err := json.Marshal(LiveMessage{Type: reports.EventReported, Report: r})
	if err != nil {
		log.Printf("Error: encoding live message: %v", err)
		return
	}
	h.broadcast(msg)
}

func (h *LiveHub) broadcast(msg []byte) {
	h.mu.RLock()
	var slow []string
	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		log.Printf("Dropping slow live subscriber %s", id)
		h.remove(id)
	}
}

// ServeHTTP handles GET /reports/live.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Printf("Live upgrade failed: %v", err)
		return
	}

	c := &liveClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.add(c)
	log.Printf("Live subscriber %s connected (%d total)", c.id, h.Len())

	go c.writePump()
	c.readPump()
	h.remove(c.id)
	log.Printf("Live subscriber %s disconnected", c.id)
}

// readPump discards client messages and keeps the read deadline moving
// while pongs arrive. It returns when the connection fails.
func (c *liveClient) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes to the connection and closes it when the send
// channel is closed.
func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
