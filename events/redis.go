package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient creates a Redis client and checks that the server answers.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) PublishGigAllocated(ctx context.Context, event GigAllocated) error {
	payload, err := encode(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// RedisSubscriber feeds events from a Redis channel to a handler.
type RedisSubscriber struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, channel string, log *zap.Logger) *RedisSubscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSubscriber{client: client, channel: channel, log: log}
}

// Run blocks, handling events one at a time, until ctx is cancelled.
// Handler failures and malformed messages are logged and skipped.
func (s *RedisSubscriber) Run(ctx context.Context, handler Handler) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}
	s.log.Info("subscribed to events", zap.String("channel", s.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, known, err := decode([]byte(msg.Payload))
			if err != nil {
				s.log.Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if !known {
				continue
			}
			if err := handler(ctx, event); err != nil {
				s.log.Error("gig allocated handler failed", zap.Uint("gig_id", event.GigID), zap.Error(err))
			}
		}
	}
}
