// Package cache stores live directory payloads between requests.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ziadkadry99/dirpage/internal/directory"
)

// Cache is a TTL store of directory payloads keyed by directory key.
// A miss is reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (p *directory.Payload, ok bool, err error)
	Set(ctx context.Context, key string, p *directory.Payload, ttl time.Duration) error
	Close() error
}

type memoryEntry struct {
	payload *directory.Payload
	expires time.Time
}

// sweepEvery is the number of Set calls between sweeps of expired entries.
const sweepEvery = 256

// Memory is an in-process Cache. Expired entries are dropped on Get and swept
// every sweepEvery writes, so keys that are never read again do not pile up.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	writes  int
	now     func() time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (*directory.Payload, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (m *Memory) Set(_ context.Context, key string, p *directory.Payload, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.writes++
	if m.writes%sweepEvery == 0 {
		for k, e := range m.entries {
			if !now.Before(e.expires) {
				delete(m.entries, k)
			}
		}
	}
	m.entries[key] = memoryEntry{payload: p, expires: now.Add(ttl)}
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
