package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/duetapp/duet-backend/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// broker fans events out over Redis pub/sub. Each subscription holds its
// own connection (go-redis allocates one per PubSub), so a slow socket
// never stalls another room's traffic.
type broker struct {
	client *redis.Client
}

func NewBroker(client *redis.Client) store.Broker {
	return &broker{client: client}
}

func (b *broker) PublishRoom(ctx context.Context, roomID string, ev store.Event) error {
	return b.publish(ctx, roomChannel(roomID), ev)
}

func (b *broker) PublishUser(ctx context.Context, userID string, ev store.Event) error {
	return b.publish(ctx, userChannel(userID), ev)
}

func (b *broker) publish(ctx context.Context, channel string, ev store.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Event, err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (b *broker) SubscribeRoom(ctx context.Context, roomID string) (<-chan store.Event, func(), error) {
	return b.subscribe(ctx, roomChannel(roomID))
}

func (b *broker) SubscribeUser(ctx context.Context, userID string) (<-chan store.Event, func(), error) {
	return b.subscribe(ctx, userChannel(userID))
}

func (b *broker) subscribe(ctx context.Context, channel string) (<-chan store.Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	events := make(chan store.Event, 32)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev store.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("dropping malformed event")
				continue
			}
			select {
			case events <- ev:
			default:
				log.Warn().Str("channel", channel).Str("event", ev.Event).Msg("subscriber backlogged, dropping event")
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return events, cancel, nil
}
