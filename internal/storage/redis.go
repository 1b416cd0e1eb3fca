package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys in a shared redis.
const DefaultKeyPrefix = "aerophilia:"

// NewRedisClient builds a client from a redis:// URL, falling back to
// treating the value as a plain host:port address.
func NewRedisClient(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.MaxRetries = 3
	return redis.NewClient(opts)
}

// RedisStore keeps keys in redis under a fixed prefix, without expiry.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore wraps any redis command client.
func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client when it owns one.
func (s *RedisStore) Close() error {
	if c, ok := s.rdb.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
