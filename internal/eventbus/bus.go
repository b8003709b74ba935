// Package eventbus is the in-process pub/sub the registry uses to tell the
// collector (and any other interested subsystem) about kit additions and
// removals without a restart. KitUpdated and KitHealthChanged are defined
// event types, but the registry publishes only KitAdded and KitRemoved.
// Subscription management mirrors the pattern in pkg/nats/client.go: a
// mutex-guarded slice of subscribers, each removed by Unsubscribe.
package eventbus

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/lukeswitz/wardragon-analytics/pkg/log"
	"github.com/lukeswitz/wardragon-analytics/pkg/nats"
)

// EventType identifies what changed in the kit registry.
type EventType string

const (
	KitAdded         EventType = "kit.added"
	KitRemoved       EventType = "kit.removed"
	KitUpdated       EventType = "kit.updated"
	KitHealthChanged EventType = "kit.health.changed"
)

// Event is one registry change notification.
type Event struct {
	Type  EventType `json:"type"`
	KitID string    `json:"kit_id"`
	Time  time.Time `json:"time"`
	// Status is populated for KitHealthChanged events.
	Status string `json:"status,omitempty"`
}

// subjectFor maps an EventType to the NATS subject it mirrors to, when a
// mirror is configured.
func subjectFor(t EventType) string {
	return "registry." + string(t)
}

// subscriber is one registered channel with the capacity it was created with.
type subscriber struct {
	ch chan Event
}

// Bus fans registry events out to in-process subscribers and, optionally,
// mirrors them onto NATS for external observers.
type Bus struct {
	mu          sync.Mutex
	subscribers []*subscriber
}

// New returns an empty, ready-to-use Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a new buffered channel for events and returns it. The
// channel is never closed by Publish; call Unsubscribe when done.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, buffer)}
	b.subscribers = append(b.subscribers, sub)
	return sub.ch
}

// Unsubscribe removes a previously subscribed channel. Safe to call more
// than once; a no-op if ch is not currently registered.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub.ch == ch {
			close(sub.ch)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish fans out ev to every subscriber without blocking: a subscriber
// whose buffer is full drops the event and is logged, rather than stalling
// the registry on a slow consumer. It also mirrors the event onto NATS if
// an event-mirror client is connected.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	subs := make([]*subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- ev:
		default:
			log.Warnf("eventbus: subscriber buffer full, dropping %s event for kit %s", ev.Type, ev.KitID)
		}
	}

	if client := nats.GetClient(); client != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Warnf("eventbus: failed to marshal event for mirror: %v", err)
			return
		}
		if err := client.Publish(subjectFor(ev.Type), payload); err != nil {
			log.Warnf("eventbus: failed to mirror event: %v", err)
		}
	}
}
