package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis creates a Redis client from a redis:// URL or a host:port address.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	if redisURL == "" {
		return nil, fmt.Errorf("redis address required")
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisSink publishes events as JSON on Redis pub/sub channels named
// "<prefix>:<event name>".
type RedisSink struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSink returns a sink publishing through client.
func NewRedisSink(client redis.UniversalClient, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "zaloga"
	}
	return &RedisSink{client: client, prefix: prefix}
}

// Channel returns the channel an event name is published on.
func (s *RedisSink) Channel(name string) string {
	return s.prefix + ":" + name
}

// Publish implements Sink.
func (s *RedisSink) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", ev.Name, err)
	}
	if err := s.client.Publish(ctx, s.Channel(ev.Name), data).Err(); err != nil {
		return fmt.Errorf("publishing event %s to redis: %w", ev.Name, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
