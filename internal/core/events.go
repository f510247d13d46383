package core

import "sync"

// EventType distinguishes job notifications.
type EventType string

const (
	EventJobUpdate  EventType = "job_update"
	EventJobDeleted EventType = "job_deleted"
)

// Event is a status-only notification about one job. It never carries results.
type Event struct {
	Type    EventType `json:"type"`
	JobID   string    `json:"job_id"`
	Status  JobStatus `json:"status,omitempty"`
	Stage   Stage     `json:"stage,omitempty"`
	Message string    `json:"message,omitempty"`
}

func eventFor(rec JobRecord) Event {
	return Event{
		Type:    EventJobUpdate,
		JobID:   rec.ID,
		Status:  rec.Status,
		Stage:   rec.Progress.Stage,
		Message: rec.Progress.Message,
	}
}

// subscriberBuffer bounds each subscriber's queue. Slow subscribers lose events
// rather than stalling job execution.
const subscriberBuffer = 64

// EventHub fans job events out to subscribers.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventHub returns a hub with no subscribers.
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel of events and a function that ends the subscription.
// The channel is closed by the cancel function.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber without blocking.
func (h *EventHub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *EventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
