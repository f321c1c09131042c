package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yukikurage/learning-admin-api/internal/query"
)

// DefaultChannel is the Redis channel cache invalidations travel on.
const DefaultChannel = "lms:cache:invalidate"

// invalidation is the message published for each Invalidate call.
type invalidation struct {
	Origin string      `json:"origin"`
	Tags   []query.Tag `json:"tags"`
}

// RedisBus implements query.Bus over Redis pub/sub. Messages published by
// the bus itself are ignored on receipt.
type RedisBus struct {
	client  *redis.Client
	channel string
	origin  string
	logger  *zap.Logger
}

// NewRedisBus creates a bus on channel. An empty channel uses DefaultChannel.
func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Publish sends tags to every other instance.
func (b *RedisBus) Publish(ctx context.Context, tags []query.Tag) error {
	body, err := b.encode(tags)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, body).Err()
}

// Subscribe calls handler with the tags of every message from another
// instance until the returned cancel func is called or ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, handler func(tags []query.Tag)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				tags, ok := b.decode([]byte(msg.Payload))
				if !ok {
					continue
				}
				handler(tags)
			}
		}
	}()

	return cancel, nil
}

func (b *RedisBus) encode(tags []query.Tag) ([]byte, error) {
	return json.Marshal(invalidation{Origin: b.origin, Tags: tags})
}

// decode returns the tags of a message, or false for malformed messages and
// messages this bus published.
func (b *RedisBus) decode(payload []byte) ([]query.Tag, bool) {
	var msg invalidation
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.logger.Warn("Dropping malformed cache invalidation", zap.Error(err))
		return nil, false
	}
	if msg.Origin == b.origin || len(msg.Tags) == 0 {
		return nil, false
	}
	return msg.Tags, true
}
