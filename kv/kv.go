package kv

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMissing is returned by Get when the key does not exist or has expired.
var ErrMissing = errors.New("key not found")

// Store is the short-lived key/value state the service keeps outside the relational store:
// revoked sessions, password reset codes and their attempt counters.
type Store interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// Incr adds one to the counter at key. The expiration starts with the first increment.
	Incr(ctx context.Context, key string, expiration time.Duration) (int64, error)
}

// RedisStore implements Store on a go-redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore instance, ensuring that the client is not nil.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("Redis client is not initialized")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMissing
	}
	return val, err
}

func (s *RedisStore) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, expiration).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Ping checks the connection; used by the health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
