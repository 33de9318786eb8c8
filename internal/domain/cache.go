package domain

import (
	"context"
	"time"
)

// CacheError is an error reported by a Cache implementation.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned by Cache.Get for a missing or expired key.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value store drafts and their pictures live in.
// Values are opaque strings; the repository owns their encoding.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero expiration keeps it forever.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Expire resets the lifetime of existing keys. Missing keys are skipped.
	Expire(ctx context.Context, expiration time.Duration, keys ...string) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
