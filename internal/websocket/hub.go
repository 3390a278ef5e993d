package seatws

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	websocket "github.com/gofiber/contrib/websocket"
)

// Hub fans seat-availability updates out to clients subscribed to schedules.
// Enrollment dialogs subscribe to the schedules they display so counts stay
// fresh without polling.
type Hub struct {
	subscribers map[int64]map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	updates     chan *SeatUpdate
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	userID    string
	schedules map[int64]struct{}
	send      chan []byte

	// mu guards closed and the close of send. The hub goroutine closes the
	// channel; ReadPump also writes to it, so both sides take the lock.
	mu     sync.Mutex
	closed bool
}

// trySend queues a payload unless the client is closed or its buffer is
// full. The second result reports whether the client is still open.
func (c *Client) trySend(payload []byte) (sent, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, false
	}
	select {
	case c.send <- payload:
		return true, true
	default:
		return false, true
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// markClosed closes the send channel exactly once. Returns false when the
// client was already closed.
func (c *Client) markClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

type subscription struct {
	client     *Client
	scheduleID int64
}

type SeatUpdate struct {
	Type          string `json:"type"`
	ScheduleID    string `json:"schedule_id"`
	Available     int    `json:"available"`
	AvailableDemo int    `json:"available_demo"`
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		updates:     make(chan *SeatUpdate, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		userID:    userID,
		schedules: make(map[int64]struct{}),
		send:      make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.register:
		case client := <-h.unregister:
			h.drop(client)
		case sub := <-h.subscribe:
			// A client dropped for slow consumption has a closed send
			// channel; re-adding it would panic the next delivery.
			if sub.client.isClosed() {
				continue
			}
			set, ok := h.subscribers[sub.scheduleID]
			if !ok {
				set = make(map[*Client]struct{})
				h.subscribers[sub.scheduleID] = set
			}
			set[sub.client] = struct{}{}
			sub.client.schedules[sub.scheduleID] = struct{}{}
		case sub := <-h.unsubscribe:
			h.dropSubscription(sub.client, sub.scheduleID)
		case update := <-h.updates:
			h.deliver(update)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PublishSeatUpdate queues a schedule's fresh counts for delivery. Safe to
// call from any goroutine; drops the update when the hub is saturated rather
// than blocking the caller.
func (h *Hub) PublishSeatUpdate(scheduleID int64, available, availableDemo int) {
	update := &SeatUpdate{
		Type:          "seat_update",
		ScheduleID:    strconv.FormatInt(scheduleID, 10),
		Available:     available,
		AvailableDemo: availableDemo,
	}
	select {
	case h.updates <- update:
	default:
		log.Printf("seat hub: update dropped for schedule %d", scheduleID)
	}
}

func (h *Hub) deliver(update *SeatUpdate) {
	scheduleID, err := strconv.ParseInt(update.ScheduleID, 10, 64)
	if err != nil {
		return
	}
	set, ok := h.subscribers[scheduleID]
	if !ok {
		return
	}

	encoded, err := json.Marshal(update)
	if err != nil {
		log.Printf("seat hub encode update: %v", err)
		return
	}

	for client := range set {
		sent, open := client.trySend(encoded)
		switch {
		case sent:
		case open:
			h.drop(client)
		default:
			h.dropSubscription(client, scheduleID)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if !client.markClosed() {
		return
	}
	for scheduleID := range client.schedules {
		h.dropSubscription(client, scheduleID)
	}
}

func (h *Hub) dropSubscription(client *Client, scheduleID int64) {
	set, ok := h.subscribers[scheduleID]
	if !ok {
		return
	}
	delete(set, client)
	delete(client.schedules, scheduleID)
	if len(set) == 0 {
		delete(h.subscribers, scheduleID)
	}
}

// ReadPump consumes subscribe/unsubscribe frames until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type       string `json:"type"`
			ScheduleID string `json:"schedule_id"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			writeError(c, "invalid message payload")
			continue
		}

		scheduleID, err := strconv.ParseInt(incoming.ScheduleID, 10, 64)
		if err != nil || scheduleID <= 0 {
			writeError(c, "invalid schedule id")
			continue
		}

		switch incoming.Type {
		case "subscribe":
			c.hub.subscribe <- subscription{client: c, scheduleID: scheduleID}
		case "unsubscribe":
			c.hub.unsubscribe <- subscription{client: c, scheduleID: scheduleID}
		default:
			writeError(c, "unsupported message type")
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func writeError(client *Client, message string) {
	payload, err := json.Marshal(map[string]string{"type": "error", "error": message})
	if err != nil {
		return
	}
	if sent, _ := client.trySend(payload); !sent {
		client.hub.Unregister(client)
	}
}
