package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list holding the seen IDs, oldest first.
const DefaultRedisKey = "internradar:seen"

// RedisBackend keeps the seen snapshot in a Redis list.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend connects to redisURL (redis://...) and verifies the
// connection with a PING.
func NewRedisBackend(ctx context.Context, redisURL, key string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key}, nil
}

func (b *RedisBackend) Name() string { return "redis" }

// Load returns the list contents. A missing key is an empty snapshot.
func (b *RedisBackend) Load(ctx context.Context) ([]string, error) {
	ids, err := b.client.LRange(ctx, b.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.key, err)
	}
	return ids, nil
}

// Save replaces the list inside MULTI/EXEC so other clients never observe a
// half-written snapshot.
func (b *RedisBackend) Save(ctx context.Context, ids []string) error {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, b.key)
		if len(values) > 0 {
			pipe.RPush(ctx, b.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
