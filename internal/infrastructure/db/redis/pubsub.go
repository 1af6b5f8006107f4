package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
)

const defaultChannel = "feed:events"

// Sink receives events fanned in from the bus.
type Sink interface {
	Broadcast(event domain.Event)
}

// EventBus relays change events between gateway instances over a Redis
// pub/sub channel. Broadcast publishes; Run forwards everything received on
// the channel, including this instance's own messages, to a local Sink.
type EventBus struct {
	client  *redis.Client
	channel string
	local   Sink
	log     zerolog.Logger
}

func NewEventBus(client *redis.Client, channel string, local Sink, log zerolog.Logger) *EventBus {
	if channel == "" {
		channel = defaultChannel
	}
	return &EventBus{client: client, channel: channel, local: local, log: log}
}

// Broadcast publishes event to the shared channel. Failures are logged.
func (b *EventBus) Broadcast(event domain.Event) {
	if err := b.publish(context.Background(), event); err != nil {
		b.log.Warn().Err(err).Str("event_kind", event.Kind).Msg("event bus publish failed")
	}
}

func (b *EventBus) publish(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, body).Err()
}

// Run subscribes to the channel and blocks until ctx is cancelled.
func (b *EventBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("event bus subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn().Err(err).Msg("discarding malformed bus message")
				continue
			}
			b.local.Broadcast(event)
		}
	}
}
