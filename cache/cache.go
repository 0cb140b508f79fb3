package cache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const memoryCleanupInterval = 10 * time.Minute

// Memory is an in-process TTL cache used when no Redis address is configured.
type Memory struct {
	items *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", ErrMiss
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrMiss
	}
	return s, nil
}

// Set stores value under key; a non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, value, ttl)
	return nil
}
