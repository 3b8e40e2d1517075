// Package cache holds the summary caches: an in-process LRU and a shared
// Redis-backed store with the same interface.
package cache

import (
	"context"
	"sync"
	"time"

	"moneyboard/internal/log"
)

// Cache stores computed dashboard values by key. A failing backend behaves
// as a miss; callers always have the store to fall back on.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, data T)
	// Delete drops the named keys; unknown keys are ignored.
	Delete(ctx context.Context, keys ...string)
	Clear(ctx context.Context)
}

// Cleaner is implemented by caches that hold expiring entries in process.
type Cleaner interface {
	CleanExpired() int
}

// Stats counts lookups against an in-process cache.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Evicted uint64
	Size    int
}

// statser is satisfied by caches that can report Stats.
type statser interface {
	Stats() Stats
}

// Manager sweeps expired entries out of registered in-process caches so
// stale months do not hold memory until they are evicted by size.
type Manager struct {
	logger *log.Logger

	mu     sync.Mutex
	caches map[string]Cleaner
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger: logger.WithComponent(log.ComponentCache),
		caches: make(map[string]Cleaner),
	}
}

// Register adds c under name. Registering the same name twice replaces the
// earlier cache.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup sweeps every interval until Stop. Calling it on a running
// manager has no effect.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil || interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx, interval, m.done)
}

func (m *Manager) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep removes expired entries from every registered cache and returns how
// many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for name, c := range m.caches {
		n := c.CleanExpired()
		total += n
		if s, ok := c.(statser); ok && n > 0 {
			st := s.Stats()
			m.logger.Debug("Swept summary cache", "cache", name, log.FieldCount, n,
				"size", st.Size, "hits", st.Hits, "misses", st.Misses)
		}
	}
	return total
}

// Stop ends the sweep loop and waits for it to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
