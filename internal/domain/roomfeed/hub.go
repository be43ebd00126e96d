package roomfeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

const EventUnitStatus = "unit_status"

// Event is what connected clients receive.
type Event struct {
	Type string                    `json:"type"`
	Unit inventory.UnitStatusEvent `json:"unit"`
}

type clientMessage struct {
	Type       string `json:"type"`
	RoomTypeID int64  `json:"room_type_id"`
}

// client is one websocket subscriber. An empty roomTypes set means all types.
type client struct {
	staffID   int64
	conn      *websocket.Conn
	send      chan []byte
	roomTypes map[int64]bool
}

func (c *client) wants(roomTypeID int64) bool {
	return len(c.roomTypes) == 0 || c.roomTypes[roomTypeID]
}

// Hub fans unit status changes out to front desk and housekeeping screens.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishUnitStatus pushes ev to local subscribers. It never blocks on a slow client.
func (h *Hub) PublishUnitStatus(_ context.Context, ev inventory.UnitStatusEvent) error {
	data, err := json.Marshal(Event{Type: EventUnitStatus, Unit: ev})
	if err != nil {
		return err
	}
	h.broadcast(ev.RoomTypeID, data)
	return nil
}

func (h *Hub) broadcast(roomTypeID int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(roomTypeID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn("roomfeed client too slow, dropping event", zap.Int64("staff_id", c.staffID))
		}
	}
}

// ServeWS registers conn and blocks until the client goes away.
func (h *Hub) ServeWS(conn *websocket.Conn, staffID int64, roomTypes []int64) {
	c := &client{
		staffID:   staffID,
		conn:      conn,
		send:      make(chan []byte, 64),
		roomTypes: make(map[int64]bool),
	}
	for _, id := range roomTypes {
		c.roomTypes[id] = true
	}

	h.register(c)
	h.log.Debug("roomfeed client connected", zap.Int64("staff_id", staffID))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Debug("roomfeed client disconnected", zap.Int64("staff_id", c.staffID))
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Info("roomfeed read failed", zap.Int64("staff_id", c.staffID), zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.RoomTypeID <= 0 {
			continue
		}

		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			c.roomTypes[msg.RoomTypeID] = true
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			delete(c.roomTypes, msg.RoomTypeID)
			h.mu.Unlock()
		}
	}
}

func (h *Hub) writePump(c *client) {
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
