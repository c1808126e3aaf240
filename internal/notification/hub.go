// Package notification carries fire-and-forget events from the services
// to connected clients. The ledger never waits on delivery.
package notification

import (
	"sync"

	"go.uber.org/zap"
)

const (
	EventCapacityChanged   = "capacity_changed"
	EventInternshipCreated = "internship_created"
	EventInternshipDeleted = "internship_deleted"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// CapacityChange is the payload for EventCapacityChanged.
type CapacityChange struct {
	InternshipID   int64 `json:"internship_id"`
	AvailableSpots int   `json:"available_spots"`
}

// Notifier is what the services see. Publish must not block.
type Notifier interface {
	Publish(event Event)
}

// Hub fans events out to subscribers (the SSE endpoint). Slow subscribers
// lose events rather than stalling publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber channel. The caller must drain it
// and call the returned cancel function when done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.logger.Debug("dropping event for slow subscriber",
				zap.String("type", event.Type),
			)
		}
	}
}

// SubscriberCount is used by tests and the health endpoint.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
