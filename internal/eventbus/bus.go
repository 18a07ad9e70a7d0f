// Package eventbus fans out gateway lifecycle events to in-process
// subscribers. Delivery is lossy: a subscriber that falls behind has its
// oldest-pending event dropped rather than blocking the publisher.
package eventbus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toolmesh/gatefed/pkg/log"
)

// EventType identifies a gateway lifecycle transition.
type EventType string

const (
	GatewayAdded       EventType = "gateway_added"
	GatewayUpdated     EventType = "gateway_updated"
	GatewayActivated   EventType = "gateway_activated"
	GatewayDeactivated EventType = "gateway_deactivated"
	GatewayDeleted     EventType = "gateway_deleted"
	GatewayRemoved     EventType = "gateway_removed"
)

// GatewaySnapshot is the partial projection of a Gateway carried on
// lifecycle events: just enough for a subscriber to know what changed
// without a round trip back to the registry.
type GatewaySnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// Event is the envelope published to subscribers.
type Event struct {
	Type      EventType
	Data      GatewaySnapshot
	Timestamp time.Time
}

const subscriberBuffer = 50

// Bus is an in-process publish/subscribe hub. Each subscriber owns a
// buffered channel; Publish never blocks on a slow subscriber.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// New returns an empty Bus ready to accept subscribers and publishes.
func New() *Bus {
	return &Bus{subscribers: make(map[string]chan Event)}
}

// Subscribe registers a new subscriber and returns its id and receive-only
// channel. The id is used with Unsubscribe to tear the subscription down.
func (b *Bus) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call with
// an unknown id.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish fans an event out to every current subscriber. The event's
// Timestamp is set to now if zero. A subscriber whose buffer is full has its
// oldest pending event dropped to make room, and a warning logged; publish
// order within one subscriber is otherwise preserved.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- evt:
			default:
			}
			log.WithComponent("eventbus").Warn().
				Str("subscriber_id", id).
				Str("event_type", string(evt.Type)).
				Msg("subscriber buffer full, dropping oldest event")
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
