package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/snapshot"
	"github.com/rs/zerolog"
)

// ClientBuffer is how many undelivered messages a listener may queue
const ClientBuffer = 8

// Source builds the snapshot a principal is allowed to see
type Source interface {
	Snapshot(roomID string, principal models.Principal) (snapshot.View, error)
}

// Client is one listener on a room
type Client struct {
	RoomID    string
	Principal models.Principal
	send      chan Message
}

// Messages returns the client's delivery channel
func (c *Client) Messages() <-chan Message {
	return c.send
}

// Hub fans room changes out to every listener of that room. Each listener
// receives the snapshot for its own principal.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	source  Source
	timeout time.Duration
	log     zerolog.Logger
}

// NewHub creates a hub. timeout bounds how long a slow listener can hold up delivery.
func NewHub(log zerolog.Logger, timeout time.Duration) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		timeout: timeout,
		log:     log.With().Str("component", "sse").Logger(),
	}
}

// SetSource sets where snapshots come from
func (h *Hub) SetSource(src Source) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = src
}

// AddClient registers a listener for a room
func (h *Hub) AddClient(roomID string, principal models.Principal) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.rooms[roomID]
	if clients == nil {
		clients = make(map[*Client]struct{})
		h.rooms[roomID] = clients
	}
	// Warn if the same player has multiple connections
	if principal.PlayerID != "" {
		dup := 0
		for c := range clients {
			if c.Principal.PlayerID == principal.PlayerID {
				dup++
			}
		}
		if dup > 0 {
			h.log.Debug().Str("room_id", roomID).Str("player_id", principal.PlayerID).Int("existing", dup).Msg("player opened additional connection")
		}
	}
	c := &Client{RoomID: roomID, Principal: principal, send: make(chan Message, ClientBuffer)}
	clients[c] = struct{}{}
	return c
}

// RemoveClient unregisters a listener. The room itself is unaffected.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.rooms[c.RoomID]
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.RoomID)
	}
	h.log.Debug().Str("room_id", c.RoomID).Int("remaining", len(clients)).Msg("client removed")
}

// ClientCount returns the number of listeners on a room
func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// RoomChanged sends every listener of the room its fresh snapshot.
// It never waits on a listener, so a stuck one cannot delay the others or the caller.
func (h *Hub) RoomChanged(roomID string) {
	h.mu.RLock()
	src := h.source
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if src == nil || len(clients) == 0 {
		return
	}

	// Send messages WITHOUT holding the lock
	delivered := 0
	for _, c := range clients {
		msg, err := h.Render(src, c)
		if err != nil {
			h.log.Warn().Err(err).Str("room_id", roomID).Msg("render snapshot")
			continue
		}
		if h.offer(c, msg) {
			delivered++
		}
	}
	h.log.Debug().Str("room_id", roomID).Int("delivered", delivered).Int("clients", len(clients)).Msg("broadcast")
}

// Render builds the snapshot message for one client
func (h *Hub) Render(src Source, c *Client) (Message, error) {
	view, err := src.Snapshot(c.RoomID, c.Principal)
	if err != nil {
		return Message{}, err
	}
	data, err := json.Marshal(view)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: EventSnapshot, Data: data}, nil
}

// Send renders and queues a snapshot for a single client. It may wait up to
// the hub timeout, so call it from the client's own goroutine.
func (h *Hub) Send(c *Client) bool {
	h.mu.RLock()
	src := h.source
	h.mu.RUnlock()
	if src == nil {
		return false
	}
	msg, err := h.Render(src, c)
	if err != nil {
		h.log.Warn().Err(err).Str("room_id", c.RoomID).Msg("render snapshot")
		return false
	}
	return h.deliver(c, msg)
}

// offer queues msg without blocking the caller. Every snapshot is the full
// room, so a full buffer gives up its oldest entry to the newest one.
func (h *Hub) offer(c *Client, msg Message) bool {
	for range 2 {
		select {
		case c.send <- msg:
			return true
		default:
		}
		select {
		case <-c.send:
			h.log.Debug().Str("room_id", c.RoomID).Str("player_id", c.Principal.PlayerID).Msg("replaced stale snapshot for slow client")
		default:
		}
	}
	h.log.Warn().Str("room_id", c.RoomID).Str("player_id", c.Principal.PlayerID).Msg("dropped snapshot for slow client")
	return false
}

// deliver waits up to the hub timeout for room in the client's buffer
func (h *Hub) deliver(c *Client, msg Message) bool {
	timer := time.NewTimer(h.timeout)
	defer timer.Stop()
	select {
	case c.send <- msg:
		return true
	case <-timer.C:
		// Timeout - skip this client to avoid blocking
		h.log.Warn().Str("room_id", c.RoomID).Str("player_id", c.Principal.PlayerID).Msg("dropped snapshot for slow client")
		return false
	}
}
