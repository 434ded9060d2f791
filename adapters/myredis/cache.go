// Package myredis mirrors the registry into Redis for external dashboards. The mirror is write-only:
// the gateway never reads it back.
package myredis

import (
	"context"
	"fmt"
	"time"

	"mycenter/interfaces"
	"mycenter/service"

	"github.com/go-redis/redis/v8"
)

type redisCache[T any] struct {
	client  redis.UniversalClient
	prefix  string
	marshal func(T) ([]byte, error)
}

var _ interfaces.Cache[int] = (*redisCache[int])(nil)

// NewCache creates redis implementation of generic cache interface. Keys are stored as "<prefix>:<key>".
func NewCache[T any](client redis.UniversalClient, prefix string, marshal func(T) ([]byte, error)) *redisCache[T] {
	return &redisCache[T]{
		client:  client,
		prefix:  prefix,
		marshal: marshal,
	}
}

func (r *redisCache[T]) WriteValue(ctx context.Context, key string, item T, ttlMs int) error {
	bytes, err := r.marshal(item)
	if err != nil {
		return service.NewInternalServerError("Redis marshal item error", fmt.Errorf("can't marshal item of type %T, err: %w", item, err))
	}

	err = r.client.Set(ctx, r.generateKey(key), bytes, time.Duration(ttlMs)*time.Millisecond).Err()
	if err != nil {
		return service.NewInternalServerError("Redis write key error", fmt.Errorf("can't write item of type %T to redis (key='%s'), err: %w", item, key, err))
	}
	return nil
}

func (r *redisCache[T]) DeleteValue(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.generateKey(key)).Err(); err != nil {
		return service.NewInternalServerError("Redis delete key error", fmt.Errorf("can't delete key '%s' from redis, err: %w", key, err))
	}
	return nil
}

func (r *redisCache[T]) generateKey(key string) string {
	return r.prefix + ":" + key
}
