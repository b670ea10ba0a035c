package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversByNameAndWildcard(t *testing.T) {
	b := NewBus()
	var named, all []string

	b.Subscribe(CartChanged, func(_ context.Context, ev Event) { named = append(named, ev.CartID) })
	b.Subscribe("*", func(_ context.Context, ev Event) { all = append(all, ev.Name) })

	b.Publish(context.Background(), Event{Name: CartChanged, CartID: "c1"})
	b.Publish(context.Background(), Event{Name: "order.paid"})

	assert.Equal(t, []string{"c1"}, named)
	assert.Equal(t, []string{CartChanged, "order.paid"}, all)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	var first, second int
	stop := b.Subscribe(CartChanged, func(context.Context, Event) { first++ })
	b.Subscribe(CartChanged, func(context.Context, Event) { second++ })

	b.Publish(context.Background(), Event{Name: CartChanged})
	stop()
	stop() // second call is a no-op
	b.Publish(context.Background(), Event{Name: CartChanged})

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}
