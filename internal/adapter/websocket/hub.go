package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/sundinlabs/multibot/internal/domain"
)

// PanelEvent is one live update pushed to connected panel clients.
type PanelEvent struct {
	Type   string               `json:"type"` // message, status, toggle
	Bot    string               `json:"bot"`
	Number string               `json:"number,omitempty"`
	Entry  *domain.HistoryEntry `json:"entry,omitempty"`
	Status string               `json:"status,omitempty"`
}

// Hub fans panel events out to websocket clients. Clients subscribe
// to one bot or to everything with "*".
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound events to distribute.
	events chan PanelEvent

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex
}

type Client struct {
	hub *Hub
	// The websocket connection.
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send chan []byte
	// Bot the client watches; "*" receives every bot.
	bot string
}

func NewHub() *Hub {
	return &Hub{
		events:     make(chan PanelEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if client.bot != "*" && client.bot != event.Bot {
					continue
				}
				select {
				case client.send <- payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for distribution; drops when the hub is
// saturated rather than blocking the pipeline.
func (h *Hub) Publish(event PanelEvent) {
	select {
	case h.events <- event:
	default:
	}
}

// NotifyMessage publishes one chat turn to the panel feed.
func (h *Hub) NotifyMessage(bot, number string, entry domain.HistoryEntry) {
	h.Publish(PanelEvent{Type: "message", Bot: bot, Number: number, Entry: &entry})
}

// NotifyStatus publishes a lead status change to the panel feed.
func (h *Hub) NotifyStatus(bot, number, status string) {
	h.Publish(PanelEvent{Type: "status", Bot: bot, Number: number, Status: status})
}

func (h *Hub) AddClient(conn *websocket.Conn, bot string) {
	if bot == "" {
		bot = "*"
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), bot: bot}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Read loop keeps the connection alive and drains control
		// frames; the panel feed is push-only.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued events to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		}
	}
}
