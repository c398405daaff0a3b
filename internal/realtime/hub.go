package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// OccupancyChangeHandler is called when the listener count of an event room
// changes. The tally broadcaster uses it to start and stop per-room pushes.
type OccupancyChangeHandler func(eventID uuid.UUID, count int)

// Hub maintains event_id -> set of connections and broadcasts tally frames.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// eventID -> map[clientID]*Client
	rooms       map[uuid.UUID]map[string]*Client
	subs        map[uuid.UUID]func() // cancel Redis subscription per event
	mu          sync.RWMutex
	logger      *zap.Logger
	redis       RedisPublisher
	redisSub    RedisSubscriber
	onOccupancy OccupancyChangeHandler
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishEventFrame(eventID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to event channels and invokes handler for incoming frames.
type RedisSubscriber interface {
	SubscribeEvent(eventID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// SetOccupancyChangeHandler sets the callback for room occupancy changes.
func (h *Hub) SetOccupancyChangeHandler(fn OccupancyChangeHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onOccupancy = fn
}

// Register adds a client to an event room. Starts the Redis subscription for
// the event when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.EventID] == nil {
		h.rooms[c.EventID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeEvent(c.EventID, func(event string, payload []byte) {
				h.BroadcastToEvent(c.EventID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.EventID] = cancel
			}
		}
	}
	h.rooms[c.EventID][c.ID] = c
	count := len(h.rooms[c.EventID])
	onOccupancy := h.onOccupancy
	h.mu.Unlock()
	if onOccupancy != nil {
		onOccupancy(c.EventID, count)
	}
	h.logger.Debug("client joined event room", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Unregister removes a client from an event room. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var count int
	if m, ok := h.rooms[c.EventID]; ok {
		delete(m, c.ID)
		count = len(m)
		if count == 0 {
			delete(h.rooms, c.EventID)
			if cancel, ok := h.subs[c.EventID]; ok {
				cancel()
				delete(h.subs, c.EventID)
			}
		}
	}
	onOccupancy := h.onOccupancy
	h.mu.Unlock()
	if onOccupancy != nil {
		onOccupancy(c.EventID, count)
	}
	h.logger.Debug("client left event room", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// BroadcastToEvent sends a message to all clients in an event room (local only).
func (h *Hub) BroadcastToEvent(eventID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[eventID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToEventAndPublish sends to local clients and publishes to Redis
// for other instances.
func (h *Hub) BroadcastToEventAndPublish(eventID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToEvent(eventID, event, payload)
	if h.redis != nil {
		_ = h.redis.PublishEventFrame(eventID, event, data)
	}
}

// ListenerCount returns the number of connected clients in an event room.
func (h *Hub) ListenerCount(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}

// SendToClient sends a message to a single client in an event room. Used to
// hand a fresh tally frame to a client right after it joins.
func (h *Hub) SendToClient(eventID uuid.UUID, clientID string, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := WSMessage{Event: event, Data: data}
	h.mu.RLock()
	clients := h.rooms[eventID]
	c, ok := clients[clientID]
	h.mu.RUnlock()
	if !ok || c == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
