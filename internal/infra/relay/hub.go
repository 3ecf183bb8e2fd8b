// Package relay fans notifications out to the live connections announced
// under a user id. Nothing is queued: a publish reaches whoever is
// registered at that instant.
package relay

import (
	"log/slog"
	"sync"
)

// Endpoint is one live connection the hub can deliver frames to.
type Endpoint interface {
	// Deliver enqueues frame without blocking. It reports false when the
	// frame was dropped because the connection is closing or its buffer is full.
	Deliver(frame []byte) bool

	// Subject returns the user id proven by the connection's token, or ""
	// for an anonymous connection.
	Subject() string
}

// Hub maps user ids to rooms of endpoints.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[Endpoint]struct{}
	member map[Endpoint]string
	logger *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[Endpoint]struct{}),
		member: make(map[Endpoint]string),
		logger: logger,
	}
}

// Announce registers ep under userID. An endpoint already announced under
// another id is moved.
func (h *Hub) Announce(ep Endpoint, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.member[ep]; ok {
		if prev == userID {
			return
		}
		h.leave(ep, prev)
	}

	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[Endpoint]struct{})
		h.rooms[userID] = room
	}
	room[ep] = struct{}{}
	h.member[ep] = userID
}

// Remove drops ep from whichever room holds it. Once Remove returns no
// further frame is delivered to ep.
func (h *Hub) Remove(ep Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userID, ok := h.member[ep]; ok {
		h.leave(ep, userID)
	}
}

// leave must be called with h.mu held for writing.
func (h *Hub) leave(ep Endpoint, userID string) {
	delete(h.member, ep)
	room := h.rooms[userID]
	delete(room, ep)
	if len(room) == 0 {
		delete(h.rooms, userID)
	}
}

// Publish delivers frame to every endpoint announced under userID and
// returns how many accepted it. An empty room is not an error.
func (h *Hub) Publish(userID string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ep := range h.rooms[userID] {
		if ep.Deliver(frame) {
			delivered++

			continue
		}
		if h.logger != nil {
			h.logger.Warn("Relay frame dropped", slog.String("userID", userID))
		}
	}

	return delivered
}

// PublishVerified is Publish restricted to endpoints whose token subject is
// userID. Anonymous endpoints announced into the room are skipped.
func (h *Hub) PublishVerified(userID string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ep := range h.rooms[userID] {
		if ep.Subject() != userID {
			continue
		}
		if ep.Deliver(frame) {
			delivered++

			continue
		}
		if h.logger != nil {
			h.logger.Warn("Relay frame dropped", slog.String("userID", userID))
		}
	}

	return delivered
}

// Connections returns the number of endpoints announced under userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[userID])
}

// UserOf returns the id ep is announced under.
func (h *Hub) UserOf(ep Endpoint) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userID, ok := h.member[ep]

	return userID, ok
}
