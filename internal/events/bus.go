// Package events is a small publish/subscribe channel used to tell views and
// other processes that a cart changed.
package events

import (
	"context"
	"sync"
)

const CartChanged = "cart.changed"

type Event struct {
	Name   string `json:"name"`
	CartID string `json:"cart_id,omitempty"`
	// Origin identifies the publishing process so bridges can drop echoes.
	Origin string `json:"origin,omitempty"`
}

type Handler func(ctx context.Context, ev Event)

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Bus delivers events synchronously to the subscribers of the event name, in
// subscription order. Subscribing to "*" receives every event.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

type subscription struct {
	id int
	h  Handler
}

func NewBus() *Bus { return &Bus{subs: make(map[string][]subscription)} }

// Subscribe returns a function that removes the subscription.
func (b *Bus) Subscribe(name string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, h: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[name]
		for i, s := range list {
			if s.id == id {
				b.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Name])+len(b.subs["*"]))
	for _, s := range b.subs[ev.Name] {
		handlers = append(handlers, s.h)
	}
	for _, s := range b.subs["*"] {
		handlers = append(handlers, s.h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
