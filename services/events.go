// services/events.go
package services

import (
	"encoding/json"
	"log"
	"sync"

	"gempro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is one entity change broadcast to connected clients. Clients
// patch their local caches from these, so the contract matches the
// persisted ChangeEvent row: entity, action, row id, full payload.
type Event struct {
	Entity  string      `json:"entity"`
	Action  string      `json:"action"`
	RowID   uuid.UUID   `json:"rowId"`
	Payload interface{} `json:"payload,omitempty"`
}

const subscriberBuffer = 16

// EventHub fans out change events to per-shop subscribers and keeps
// the ChangeEvent audit trail. Delivery is best-effort in publish
// order: a subscriber that cannot keep up loses events rather than
// blocking the writer. There is no replay.
type EventHub struct {
	db *gorm.DB

	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

func NewEventHub(db *gorm.DB) *EventHub {
	return &EventHub{
		db:          db,
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for one shop's events. The returned
// cancel func must be called when the client disconnects; it closes
// the channel.
func (h *EventHub) Subscribe(shopID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[shopID] == nil {
		h.subscribers[shopID] = make(map[chan Event]struct{})
	}
	h.subscribers[shopID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[shopID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, shopID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish persists the event and fans it out to the shop's
// subscribers without blocking.
func (h *EventHub) Publish(shopID uuid.UUID, event Event) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		log.Printf("Failed to marshal change event payload: %v", err)
		payload = nil
	}
	record := models.ChangeEvent{
		ShopID:  shopID,
		Entity:  event.Entity,
		Action:  event.Action,
		RowID:   event.RowID,
		Payload: payload,
	}
	if err := h.db.Create(&record).Error; err != nil {
		log.Printf("Failed to persist change event for %s: %v", event.Entity, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[shopID] {
		select {
		case ch <- event:
		default: // slow subscriber, drop
		}
	}
}

var (
	hub     *EventHub
	hubOnce sync.Once
)

// InitEventHub wires the package-level hub used by the controllers.
func InitEventHub(db *gorm.DB) *EventHub {
	hubOnce.Do(func() {
		hub = NewEventHub(db)
	})
	return hub
}

// Events returns the package-level hub, or nil before InitEventHub.
func Events() *EventHub {
	return hub
}

// PublishChange is the controllers' one-liner for announcing a
// mutation. Safe to call before the hub exists (startup, tests).
func PublishChange(shopID uuid.UUID, entity, action string, rowID uuid.UUID, payload interface{}) {
	if hub == nil {
		return
	}
	hub.Publish(shopID, Event{Entity: entity, Action: action, RowID: rowID, Payload: payload})
}
