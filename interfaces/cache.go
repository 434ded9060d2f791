package interfaces

import "context"

// Cache is a keyed store of serialized values under a common prefix.
//
// Implemented by adapters/myredis. Used by adapters/myredis.Mirror to publish registry snapshots.
//
//go:generate moq -stub -out mock/cache.go -pkg mock . Cache
type Cache[T any] interface {
	// WriteValue writes value in cache with the given TTL (ms, 0 means no expiry).
	// Returns:
	// 1) nil on success;
	// 2) internal_server_error when marshalling fails or when the storage write fails.
	WriteValue(ctx context.Context, key string, item T, ttlMs int) error

	// DeleteValue deletes the value for the given key from the cache.
	// Returns:
	// 1) nil on success (also when the key was absent);
	// 2) internal_server_error when the storage delete fails.
	DeleteValue(ctx context.Context, key string) error
}
