// Package principal loads and caches immutable principal snapshots from a
// permission source. A snapshot is replaced wholesale on refresh or
// invalidation; callers never observe a partially updated permission set.
package principal

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/freebsdly/ops-console/pkg/access"
	"github.com/freebsdly/ops-console/pkg/permsource"
)

// Provider returns the current principal snapshot for a user.
type Provider interface {
	// Get returns the user's principal snapshot, loading it from the
	// permission source on a cache miss.
	Get(ctx context.Context, userID string) (*access.Principal, error)

	// Invalidate drops the cached snapshot so the next Get reloads.
	Invalidate(userID string)
}

// CachingProvider caches snapshots per user with a TTL. Expired or
// invalidated entries are reloaded from the source on demand.
type CachingProvider struct {
	source permsource.Source

	mu       sync.Mutex
	cache    *lru.LRU[string, *access.Principal]
	observer CacheObserver
}

// CacheObserver is told whether a Get was served from cache and how many
// entries are live after the lookup.
type CacheObserver func(ctx context.Context, hit bool, size int)

// DefaultCacheSize bounds the number of cached snapshots.
const DefaultCacheSize = 1024

// NewCachingProvider builds a provider over the given source. A zero ttl
// disables expiry; entries then live until invalidated or evicted.
func NewCachingProvider(source permsource.Source, size int, ttl time.Duration) *CachingProvider {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachingProvider{
		source: source,
		cache:  lru.NewLRU[string, *access.Principal](size, nil, ttl),
	}
}

// SetObserver installs a cache lookup observer. Call before the provider
// is shared between goroutines.
func (cp *CachingProvider) SetObserver(obs CacheObserver) {
	cp.mu.Lock()
	cp.observer = obs
	cp.mu.Unlock()
}

// Get returns the cached snapshot or loads a fresh one.
func (cp *CachingProvider) Get(ctx context.Context, userID string) (*access.Principal, error) {
	cp.mu.Lock()
	cached, ok := cp.cache.Get(userID)
	obs, size := cp.observer, cp.cache.Len()
	cp.mu.Unlock()
	if obs != nil {
		obs(ctx, ok, size)
	}
	if ok {
		return cached, nil
	}
	return cp.Refresh(ctx, userID)
}

// Refresh loads roles and permissions from the source and atomically
// replaces the cached snapshot with a new one.
func (cp *CachingProvider) Refresh(ctx context.Context, userID string) (*access.Principal, error) {
	roles, err := cp.source.GetUserRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles for %s: %w", userID, err)
	}
	perms, err := cp.source.GetUserPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions for %s: %w", userID, err)
	}

	snapshot := access.NewPrincipal(userID, roles, perms)
	cp.mu.Lock()
	cp.cache.Add(userID, snapshot)
	cp.mu.Unlock()
	return snapshot, nil
}

// Invalidate drops the cached snapshot for a user.
func (cp *CachingProvider) Invalidate(userID string) {
	cp.mu.Lock()
	cp.cache.Remove(userID)
	cp.mu.Unlock()
}

// CachedUsers returns the user ids with live cache entries.
func (cp *CachingProvider) CachedUsers() []string {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.cache.Keys()
}
