package kv

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	Entry
	expires time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// MemStore is an in-process Store. Expired entries are dropped lazily.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]memEntry{}, now: time.Now}
}

func (m *MemStore) Put(_ context.Context, key string, entry Entry, opts PutOptions) error {
	if key == "" {
		return ErrInvalidKey
	}
	e := memEntry{Entry: Entry{Data: append([]byte(nil), entry.Data...), Meta: entry.Meta}}
	if opts.TTL > 0 {
		e.expires = m.now().Add(opts.TTL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = e
	return nil
}

func (m *MemStore) Get(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return Entry{}, ErrNotFound
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return Entry{}, ErrNotFound
	}
	return e.Entry, nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemStore) Keys(_ context.Context, prefix string) ([]string, error) {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k, e := range m.data {
		if strings.HasPrefix(k, prefix) && !e.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

var _ Store = (*MemStore)(nil)
