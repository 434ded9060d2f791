package myredis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mycenter/domain"
	"mycenter/service"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "redis://localhost:6379"
const testPrefix = "test_instance"

// setupTestRedis connects to a local Redis and skips the test when none is running.
func setupTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	client, err := NewRedisUniversalClient(testRedisAddr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable at %s: %v", testRedisAddr, err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if keys, _ := client.Keys(ctx, testPrefix+":*").Result(); len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		_ = client.Close()
	})
	return client
}

func marshalInstance(i domain.Instance) ([]byte, error) { return json.Marshal(i) }

func TestCache_WriteAndDelete(t *testing.T) {
	ctx := context.Background()
	client := setupTestRedis(t)
	cache := NewCache[domain.Instance](client, testPrefix, marshalInstance)

	inst := domain.Instance{ModuleName: "billing", ServiceVersion: "1.0.0", Host: "10.0.0.5", Port: 9001, Status: domain.StatusOnline}
	require.NoError(t, cache.WriteValue(ctx, inst.Key(), inst, 0))

	raw, err := client.Get(ctx, testPrefix+":"+inst.Key()).Bytes()
	require.NoError(t, err)
	var got domain.Instance
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, inst, got)

	require.NoError(t, cache.DeleteValue(ctx, inst.Key()))
	_, err = client.Get(ctx, testPrefix+":"+inst.Key()).Bytes()
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCache_WriteValueTTL(t *testing.T) {
	ctx := context.Background()
	client := setupTestRedis(t)
	cache := NewCache[domain.Instance](client, testPrefix, marshalInstance)

	require.NoError(t, cache.WriteValue(ctx, "ttl", domain.Instance{ModuleName: "billing"}, 60_000))
	ttl, err := client.TTL(ctx, testPrefix+":ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCache_MarshalError(t *testing.T) {
	client, err := NewRedisUniversalClient(testRedisAddr)
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache[domain.Instance](client, testPrefix, func(domain.Instance) ([]byte, error) {
		return nil, errors.New("cannot encode")
	})
	err = cache.WriteValue(context.Background(), "k", domain.Instance{}, 0)
	require.Error(t, err)
	assert.Equal(t, service.ErrInternalServerError, service.ToMyErrorCode(err))
}

func TestCache_ClosedClient(t *testing.T) {
	client, err := NewRedisUniversalClient(testRedisAddr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	cache := NewCache[domain.Instance](client, testPrefix, marshalInstance)
	err = cache.WriteValue(context.Background(), "k", domain.Instance{}, 0)
	assert.Equal(t, service.ErrInternalServerError, service.ToMyErrorCode(err))
	err = cache.DeleteValue(context.Background(), "k")
	assert.Equal(t, service.ErrInternalServerError, service.ToMyErrorCode(err))
}
