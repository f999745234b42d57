package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucketState struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process. Buckets idle for an hour are
// dropped by a background sweep.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucketState
	now     func() time.Time

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the sweep interval. Zero disables the sweep.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(m *MemoryStore) { m.sweepInterval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		buckets:       map[string]*bucketState{},
		now:           time.Now,
		sweepInterval: 5 * time.Minute,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sweepInterval > 0 {
		go m.sweep()
	}
	return m
}

func (m *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucketState{tokens: cfg.Capacity, lastRefill: now}
		m.buckets[key] = b
	}
	if have, refilled := refill(b.tokens, b.lastRefill, now, cfg); refilled {
		b.tokens, b.lastRefill = have, now
	}
	b.lastAccess = now

	remaining := b.tokens - tokens
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (m *MemoryStore) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets, key)
	return nil
}

func (m *MemoryStore) sweep() {
	t := time.NewTicker(m.sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.removeStale()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryStore) removeStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, b := range m.buckets {
		if now.Sub(b.lastAccess) > time.Hour {
			delete(m.buckets, key)
		}
	}
}

// Close stops the sweep. Safe to call more than once.
func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
