package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with TTL support
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]entry
	opts   Options
	cancel context.CancelFunc
}

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// NewMemoryStore creates a memory store and starts its expiry sweeper
func NewMemoryStore(opts Options) *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryStore{
		items:  make(map[string]entry),
		opts:   opts,
		cancel: cancel,
	}
	go m.sweep(ctx, time.Minute)
	return m
}

// Get implements Store
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.items[m.opts.Prefix+key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrMiss, key)
	}
	return e.value, nil
}

// Set implements Store
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = m.opts.DefaultTTL
	}
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[m.opts.Prefix+key] = e
	m.mu.Unlock()
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.items, m.opts.Prefix+key)
	m.mu.Unlock()
	return nil
}

// Clear implements Store
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, m.opts.Prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

// Exists implements Store
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if IsMiss(err) {
		return false, nil
	}
	return err == nil, err
}

// Len returns the number of live entries
func (m *MemoryStore) Len() int {
	now := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.items {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Close stops the sweeper
func (m *MemoryStore) Close() error {
	m.cancel()
	return nil
}

func (m *MemoryStore) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, e := range m.items {
				if e.expired(now) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
