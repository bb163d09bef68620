// Package ws implements the live assignment feed. Clients subscribe to
// a lab over a websocket and receive every seat and computer assignment
// change in that lab as it happens.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeTimeout = 10 * time.Second

type client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	labID uint64
}

type labEvent struct {
	labID   uint64
	payload []byte
}

// Hub fans assignment events out to the websocket clients subscribed
// to each lab. Run must be started on its own goroutine before any
// client connects or event is broadcast.
type Hub struct {
	mu         sync.Mutex
	rooms      map[uint64]map[*client]struct{}
	register   chan *client
	unregister chan *client
	events     chan labEvent
}

// NewHub constructs an idle Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint64]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan labEvent, 64),
	}
}

// Run processes registrations and event fan-out until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case cl := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[cl.labID]
			if !ok {
				room = make(map[*client]struct{})
				h.rooms[cl.labID] = room
			}
			room[cl] = struct{}{}
			h.mu.Unlock()

		case cl := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[cl.labID]; ok {
				if _, ok := room[cl]; ok {
					delete(room, cl)
					close(cl.send)
					if len(room) == 0 {
						delete(h.rooms, cl.labID)
					}
				}
			}
			h.mu.Unlock()

		case ev := <-h.events:
			h.mu.Lock()
			for cl := range h.rooms[ev.labID] {
				select {
				case cl.send <- ev.payload:
				default:
					// Slow consumer; drop the connection rather than block the hub.
					delete(h.rooms[ev.labID], cl)
					close(cl.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast marshals the payload and delivers it to every client
// subscribed to the lab. Marshalling errors are logged and dropped;
// the feed is best-effort and never interferes with request handling.
func (h *Hub) Broadcast(labID uint64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: marshal broadcast payload failed: %v", err)
		return
	}
	select {
	case h.events <- labEvent{labID: labID, payload: data}:
	default:
		log.Printf("ws: event buffer full, dropping broadcast for lab %d", labID)
	}
}

// Stream handles GET /v1/capacity/labs/:id/stream. The connection is
// read-only from the client's point of view; inbound messages are
// discarded and only serve to detect disconnects.
func (h *Hub) Stream(c echo.Context) error {
	labID, err := pathLabID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return nil
	}
	cl := &client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		labID: labID,
	}
	h.register <- cl

	go cl.writePump()
	go cl.readPump()
	return nil
}

func pathLabID(c echo.Context) (uint64, error) {
	var id uint64
	if err := echo.PathParamsBinder(c).Uint64("id", &id).BindError(); err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: unexpected close: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
