package replay

import (
	"context"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// Memory cache defaults.
const (
	// DefaultShardCount is the number of lock shards (power of 2).
	DefaultShardCount = 16

	// DefaultSweepInterval is how often expired entries are collected.
	DefaultSweepInterval = 30 * time.Second
)

// Memory is an in-process replay cache. Keys are spread over lock
// shards by murmur3 to keep concurrent verifications off each other's
// locks; a background sweeper drops expired entries so the map does
// not grow without bound between cache hits.
type Memory struct {
	shards    []*memoryShard
	shardMask uint32

	sweepInterval time.Duration
	clock         func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type memoryShard struct {
	mu      sync.RWMutex
	entries map[string]time.Time // key -> expiry instant
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithSweepInterval sets the sweep interval.
func WithSweepInterval(interval time.Duration) MemoryOption {
	return func(m *Memory) {
		m.sweepInterval = interval
	}
}

// WithMemoryClock sets the clock source (tests).
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.clock = clock
	}
}

// NewMemory creates a Memory cache and starts its sweeper. Close stops
// the sweeper; the sweeper goroutine never blocks Has/Add and never
// keeps the process alive once Close is called.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		shards:        make([]*memoryShard, DefaultShardCount),
		shardMask:     DefaultShardCount - 1,
		sweepInterval: DefaultSweepInterval,
		clock:         time.Now,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	for i := range m.shards {
		m.shards[i] = &memoryShard{entries: make(map[string]time.Time)}
	}

	go m.sweepLoop()

	return m
}

func (m *Memory) shard(key string) *memoryShard {
	return m.shards[murmur3.Sum32([]byte(key))&m.shardMask]
}

// Has reports whether key is present and unexpired.
func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	s := m.shard(key)
	s.mu.RLock()
	expiry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return !m.clock().After(expiry), nil
}

// Add records key for ttl.
func (m *Memory) Add(_ context.Context, key string, ttl time.Duration) error {
	s := m.shard(key)
	s.mu.Lock()
	s.entries[key] = m.clock().Add(ttl)
	s.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included until the
// next sweep. Exposed as a gauge.
func (m *Memory) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Close stops the sweeper. Safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	<-m.doneCh
	return nil
}

func (m *Memory) sweepLoop() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopCh:
			return
		}
	}
}

// sweep removes expired entries one shard at a time so lookups are
// never blocked behind a whole-cache pass.
func (m *Memory) sweep() {
	now := m.clock()
	for _, s := range m.shards {
		s.mu.Lock()
		for key, expiry := range s.entries {
			if now.After(expiry) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}
