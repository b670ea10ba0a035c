package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	applog "joyeria/internal/log"
)

const DefaultChannel = "joyeria:events"

// RedisBridge mirrors local bus events onto a Redis channel and replays events
// published by other processes onto the local bus.
type RedisBridge struct {
	client  *redis.Client
	bus     *Bus
	channel string
	origin  string
}

func NewRedisBridge(client *redis.Client, bus *Bus, channel string) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{client: client, bus: bus, channel: channel, origin: uuid.NewString()}
}

// Publish delivers locally, then forwards to Redis. Forwarding failures are
// logged; local delivery has already happened.
func (r *RedisBridge) Publish(ctx context.Context, ev Event) {
	r.bus.Publish(ctx, ev)
	ev.Origin = r.origin
	b, err := json.Marshal(ev)
	if err != nil {
		applog.Failure("events.redis.marshal", err, map[string]any{"event": ev.Name})
		return
	}
	if err := r.client.Publish(ctx, r.channel, b).Err(); err != nil {
		applog.Failure("events.redis.publish", err, map[string]any{"event": ev.Name, "cart_id": ev.CartID})
	}
}

// Run relays remote events until ctx is done. The subscription is confirmed
// before Run returns its first error or blocks.
func (r *RedisBridge) Run(ctx context.Context, ready chan<- struct{}) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				applog.Failure("events.redis.decode", err, map[string]any{"payload": msg.Payload})
				continue
			}
			if ev.Origin == r.origin {
				continue
			}
			r.bus.Publish(ctx, ev)
		}
	}
}
