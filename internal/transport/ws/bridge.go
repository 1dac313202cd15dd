package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Bridge fans events out across instances over a Redis pub/sub channel.
// Deliver publishes; Run subscribes and feeds the local hub, so every
// instance's clients see writes made anywhere.
type Bridge struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

func NewBridge(redisURL, channel string, hub *Hub, log *zap.Logger) (*Bridge, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Bridge{rdb: rdb, channel: channel, hub: hub, log: log}, nil
}

// NewBridgeWithClient builds a bridge from an existing Redis client.
func NewBridgeWithClient(rdb *redis.Client, channel string, hub *Hub, log *zap.Logger) *Bridge {
	return &Bridge{rdb: rdb, channel: channel, hub: hub, log: log}
}

// Deliver implements EventSink by publishing to the shared channel.
func (b *Bridge) Deliver(evt *Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		b.log.Error("ws bridge: marshal error", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		b.log.Error("ws bridge: publish error", zap.Error(err))
	}
}

// Run consumes the channel until ctx is cancelled, dispatching each event to
// the local hub. Call this in a goroutine.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.log.Warn("ws bridge: bad event payload", zap.Error(err))
				continue
			}
			b.hub.Dispatch(&evt)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bridge) Close() error {
	return b.rdb.Close()
}
