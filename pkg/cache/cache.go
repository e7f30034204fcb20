// Package cache holds the read cache that sits in front of backend list and
// detail calls. Every mutation invalidates the keys it affects.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Keys of cached reads.
const (
	KeyProjects   = "rfps"
	KeyDocuments  = "documents"
	KeyAttributes = "attributes"
	KeyUsageStats = "usage-stats"
)

// ProjectKey returns the key of one project detail read.
func ProjectKey(projectID string) string {
	return "rfp:" + projectID
}

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ScopeFunc derives a namespace from a request context. It reports false
// when ctx carries no scope.
type ScopeFunc func(ctx context.Context) (string, bool)

// Cache namespaces a Store and applies a default TTL.
type Cache struct {
	store     Store
	namespace string
	scope     ScopeFunc
	ttl       time.Duration
	logger    *slog.Logger
}

// New wraps store. Keys are prefixed with namespace, which callers use to
// separate organizations.
func New(store Store, namespace string, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if store == nil {
		store = Noop{}
	}
	return &Cache{store: store, namespace: namespace, ttl: ttl, logger: logger}
}

// WithNamespace returns a Cache sharing the store under another namespace.
func (c *Cache) WithNamespace(namespace string) *Cache {
	clone := *c
	clone.namespace = namespace
	return &clone
}

// WithScope returns a Cache sharing the store whose namespace comes from
// each request context. The fixed namespace applies when scope reports none.
func (c *Cache) WithScope(scope ScopeFunc) *Cache {
	clone := *c
	clone.scope = scope
	return &clone
}

func (c *Cache) key(ctx context.Context, k string) string {
	ns := c.namespace
	if c.scope != nil {
		if scoped, ok := c.scope(ctx); ok {
			ns = scoped
		}
	}
	if ns == "" {
		return k
	}
	return ns + ":" + k
}

// Invalidate drops the given keys. Failures are logged, not returned; a stale
// entry expires with its TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(ctx, k)
	}
	if err := c.store.Delete(ctx, full...); err != nil {
		c.logger.Warn("cache invalidate failed", "keys", keys, "error", err)
	}
}

// Fetch returns the cached value for key, or calls load and caches its
// result. Store failures degrade to a direct load.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	full := c.key(ctx, key)
	data, ok, err := c.store.Get(ctx, full)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("cache entry unreadable", "key", key)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := Put(ctx, c, key, v); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// Put stores v under key.
func Put[T any](ctx context.Context, c *Cache, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return c.store.Set(ctx, c.key(ctx, key), data, c.ttl)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                  { return nil }
