package cache

import (
	"fmt"
	"sync"
	"time"

	"kharcha/internal/log"
)

// Kinds accepted by New
const (
	KindLRU       = "lru"
	KindRistretto = "ristretto"
	KindNone      = "none"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Clear drops every entry
	Clear()
}

// New builds a cache of the given kind holding up to size entries for ttl.
func New[T any](kind string, size int, ttl time.Duration) (Cache[T], error) {
	switch kind {
	case KindLRU:
		return NewLRUCache[T](size, ttl), nil
	case KindRistretto:
		return NewRistrettoCache[T](size, ttl)
	case KindNone, "":
		return Noop[T]{}, nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", kind)
	}
}

// Noop never stores anything
type Noop[T any] struct{}

func (Noop[T]) Get(string) (T, bool) {
	var zero T
	return zero, false
}
func (Noop[T]) Set(string, T) {}
func (Noop[T]) Delete(string) {}
func (Noop[T]) Clear() {}

// Manager handles cache lifecycle and cleanup
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	closers     []Closer
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
	stopOnce    sync.Once
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Closer is implemented by caches that own background goroutines.
type Closer interface {
	Close()
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds c to the periodic sweep when it supports one and closes it on
// Stop when it is a Closer. It reports whether c was kept for either.
func (m *Manager) Register(c any) bool {
	cl, sweeps := c.(Cleaner)
	cc, closes := c.(Closer)
	m.mu.Lock()
	defer m.mu.Unlock()
	if sweeps {
		m.caches = append(m.caches, cl)
	}
	if closes {
		m.closers = append(m.closers, cc)
	}
	return sweeps || closes
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Expired cache entries removed", log.FieldCount, n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Sweep cleans every registered cache once and returns the entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop stops the cleanup routine and closes every registered Closer. Safe to
// call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		m.mu.Lock()
		started := m.started
		closers := m.closers
		m.mu.Unlock()
		if started {
			<-m.cleanupDone
		}
		for _, c := range closers {
			c.Close()
		}
		if len(closers) > 0 {
			m.logger.Debug("Caches closed", log.FieldCount, len(closers))
		}
	})
}
