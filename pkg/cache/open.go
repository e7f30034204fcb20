package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Open builds the Store named by backend. redisURL is used only for redis.
func Open(ctx context.Context, backend, redisURL string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendNone:
		return Noop{}, nil
	case BackendRedis:
		return NewRedis(ctx, redisURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}
