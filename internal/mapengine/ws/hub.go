package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"pamojaBack/internal/mapengine/markers"
	"pamojaBack/internal/models"
)

const writeDeadline = 10 * time.Second

// Logger is the minimal logger required by the hub.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Client is a connected admin map session.
type Client struct {
	ID     string
	Socket *websocket.Conn
}

type unreg struct {
	id   string
	conn *websocket.Conn
}

// Message is the envelope pushed to map clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans rendered feature sets and user-location updates out to connected
// map clients.
type Hub struct {
	logger     Logger
	clients    map[string]*websocket.Conn
	register   chan Client
	unregister chan unreg
	outbound   chan Message
}

// NewHub creates a hub.
func NewHub(logger Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan Client),
		unregister: make(chan unreg),
		outbound:   make(chan Message, 16),
	}
}

// Run starts the hub loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for id, conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, id)
			}
			return
		case client := <-h.register:
			if old, ok := h.clients[client.ID]; ok && old != nil && old != client.Socket {
				_ = old.Close()
			}
			h.clients[client.ID] = client.Socket
		case u := <-h.unregister:
			if cur, ok := h.clients[u.id]; ok && cur == u.conn {
				_ = cur.Close()
				delete(h.clients, u.id)
			}
		case msg := <-h.outbound:
			for id, conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(msg); err != nil {
					h.logger.Errorf("map hub: send to %s failed: %v", id, err)
					_ = conn.Close()
					delete(h.clients, id)
				}
			}
		}
	}
}

// Register attaches a client connection.
func (h *Hub) Register(c Client) {
	h.register <- c
}

// Unregister detaches a client connection.
func (h *Hub) Unregister(id string, conn *websocket.Conn) {
	h.unregister <- unreg{id: id, conn: conn}
}

// BroadcastFeatures pushes a rendered marker set to all clients. Slow
// consumers drop frames rather than block the renderer.
func (h *Hub) BroadcastFeatures(features []markers.Feature) {
	select {
	case h.outbound <- Message{Type: "markers", Data: features}:
	default:
		h.logger.Infof("map hub: dropped marker frame, outbound queue full")
	}
}

// BroadcastUserLocation pushes a device position update to all clients.
func (h *Hub) BroadcastUserLocation(loc models.UserLocation) {
	select {
	case h.outbound <- Message{Type: "user_location", Data: loc}:
	default:
		h.logger.Infof("map hub: dropped location frame, outbound queue full")
	}
}
