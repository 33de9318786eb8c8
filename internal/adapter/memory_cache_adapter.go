package adapter

import (
	"context"
	"sync"
	"time"

	"quiz-author/internal/domain"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCacheAdapter implements domain.Cache inside the process. It backs
// single-instance deployments and local development where drafts do not
// need to outlive a restart. A background loop evicts expired entries until
// Close is called.
type MemoryCacheAdapter struct {
	items *ttlcache.Cache[string, string]

	// Serializes read-modify-write in Expire against Set and Delete.
	mu        sync.Mutex
	closeOnce sync.Once
}

// NewMemoryCacheAdapter creates an empty in-process cache and starts its
// eviction loop.
func NewMemoryCacheAdapter() *MemoryCacheAdapter {
	items := ttlcache.New[string, string](
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go items.Start()
	return &MemoryCacheAdapter{items: items}
}

func ttlOf(expiration time.Duration) time.Duration {
	if expiration > 0 {
		return expiration
	}
	return ttlcache.NoTTL
}

// Get returns domain.ErrCacheMiss for missing and expired keys.
func (m *MemoryCacheAdapter) Get(_ context.Context, key string) (string, error) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return "", domain.ErrCacheMiss
	}
	return item.Value(), nil
}

func (m *MemoryCacheAdapter) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items.Set(key, value, ttlOf(expiration))
	return nil
}

// Expire moves the deadline of live keys. Expired keys stay expired.
func (m *MemoryCacheAdapter) Expire(_ context.Context, expiration time.Duration, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		item := m.items.Get(k)
		if item == nil || item.IsExpired() {
			continue
		}
		m.items.Set(k, item.Value(), ttlOf(expiration))
	}
	return nil
}

func (m *MemoryCacheAdapter) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		m.items.Delete(k)
	}
	return nil
}

func (m *MemoryCacheAdapter) Ping(context.Context) error {
	return nil
}

// Len counts stored entries, including expired ones not yet evicted.
func (m *MemoryCacheAdapter) Len() int {
	return m.items.Len()
}

// Close stops the eviction loop. It is safe to call more than once.
func (m *MemoryCacheAdapter) Close() {
	m.closeOnce.Do(m.items.Stop)
}
