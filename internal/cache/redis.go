package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Prefix namespaces every key.
	Prefix string `yaml:"prefix"`
}

// RedisStore keeps artifacts in Redis, shared across processes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// setAttempts bounds the SETNX/GET loop when the winning value expires
// between the two calls.
const setAttempts = 3

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	for range setAttempts {
		ok, err := r.client.SetNX(ctx, r.prefix+key, value, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("set cache %s: %w", key, err)
		}
		if ok {
			return value, nil
		}
		winner, found, err := r.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			return winner, nil
		}
	}
	return nil, fmt.Errorf("set cache %s: value kept expiring", key)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
