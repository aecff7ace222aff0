package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"matrimony-server/internal/presence"
)

// Server→client event names.
const (
	EventReceiveMessage         = "receive_message"
	EventNewMessageNotification = "new_message_notification"
	EventMessagesRead           = "messages_read"
	EventNewInterestRequest     = "new_interest_request"
	EventInterestResponse       = "interest_response"
	EventInterestStatusUpdated  = "interest_status_updated"
	EventNewLikeNotification    = "new_like_notification"
)

// Envelope is the wire shape for every socket event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub maintains the mapping from user id to the set of live connections
// representing that user. A user with several open tabs has several clients
// in the same room; delivery to an empty room is a no-op, not an error.
// Room state is process-local; cross-process liveness goes through the
// presence tracker.
type Hub struct {
	db       *gorm.DB
	log      *zap.Logger
	presence *presence.Tracker // may be nil when Redis is not configured

	register   chan *Client
	unregister chan *Client
	shutdown   chan struct{}

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub creates a hub. The presence tracker is optional.
func NewHub(db *gorm.DB, log *zap.Logger, tracker *presence.Tracker) *Hub {
	return &Hub{
		db:         db,
		log:        log,
		presence:   tracker,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run processes connection lifecycle events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.join(client)
		case client := <-h.unregister:
			h.leave(client)
		case <-h.shutdown:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every client and terminates Run.
func (h *Hub) Stop() {
	close(h.shutdown)
}

// join adds a connection to the room named by its authenticated user id.
// Room identity comes from the session established at upgrade time, never
// from a client-supplied field.
func (h *Hub) join(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.UserID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.UserID] = room
	}
	room[client] = true
	size := len(room)
	h.mu.Unlock()

	h.log.Info("client joined room",
		zap.String("userId", client.UserID),
		zap.Int("connections", size))

	if h.presence != nil {
		if err := h.presence.Online(context.Background(), client.UserID); err != nil {
			h.log.Warn("presence update failed", zap.String("userId", client.UserID), zap.Error(err))
		}
	}
}

// leave removes a connection on disconnect and tears the room down when the
// last connection is gone.
func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.UserID]
	if ok && room[client] {
		delete(room, client)
		close(client.send)
		if len(room) == 0 {
			delete(h.rooms, client.UserID)
		}
	}
	empty := ok && len(room) == 0
	h.mu.Unlock()

	if !ok {
		return
	}

	h.log.Info("client left room", zap.String("userId", client.UserID))

	if empty && h.presence != nil {
		if err := h.presence.Offline(context.Background(), client.UserID); err != nil {
			h.log.Warn("presence clear failed", zap.String("userId", client.UserID), zap.Error(err))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, room := range h.rooms {
		for client := range room {
			close(client.send)
		}
		delete(h.rooms, userID)
	}
}

// EmitToUser delivers an event to every connection currently in the user's
// room. Delivery is best-effort and at-most-once: an offline recipient
// simply misses the event and reconciles over REST later. A connection whose
// send buffer is full is dropped rather than blocking the emitter.
func (h *Hub) EmitToUser(userID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal event payload", zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error("failed to marshal event envelope", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.Lock()
	room := h.rooms[userID]
	for client := range room {
		select {
		case client.send <- frame:
		default:
			delete(room, client)
			close(client.send)
		}
	}
	if room != nil && len(room) == 0 {
		delete(h.rooms, userID)
	}
	h.mu.Unlock()
}

// RoomSize reports the number of live connections for a user.
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
