package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher publishes events on a pub/sub channel.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s to redis: %w", event.ID, err)
	}
	return nil
}

// RedisSource subscribes to a channel and applies each message in order. Pub/sub has no
// redelivery, so a failed message is logged and lost until the next rebuild.
type RedisSource struct {
	client  *redis.Client
	channel string
	handler Handler
	logger  *zap.Logger
}

func NewRedisSource(client *redis.Client, channel string, handler Handler, logger *zap.Logger) *RedisSource {
	return &RedisSource{client: client, channel: channel, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled.
func (s *RedisSource) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so a bad address fails fast.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("redis consumer started", zap.String("channel", s.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.dispatch(ctx, msg.Payload)
		}
	}
}

func (s *RedisSource) dispatch(ctx context.Context, payload string) {
	event, err := Decode([]byte(payload))
	if err != nil {
		s.logger.Warn("bad message", zap.String("channel", s.channel), zap.Error(err))
		return
	}
	if err := s.handler.HandleEvent(ctx, event); err != nil {
		level := zap.ErrorLevel
		if errors.Is(err, ErrMalformedEvent) {
			level = zap.WarnLevel
		}
		s.logger.Log(level, "handle failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}
