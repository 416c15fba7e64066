package kv

import (
	"fmt"
	"sync"

	"github.com/debemdeboas/ghostwriter/internal/cache"
)

// MemoryStore keeps values in process memory. A non-zero quota bounds the
// total size of keys plus values, like a browser storage quota.
type MemoryStore struct {
	// Serializes the quota check with the write.
	mu    sync.Mutex
	items *cache.Cache[string, []byte]
	quota int
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		items: cache.NewCache[string, []byte](),
		quota: quota,
	}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	value, ok := m.items.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		used := m.usedExcept(key)
		if used+len(key)+len(value) > m.quota {
			return fmt.Errorf("setting %q (%d bytes, %d of %d in use): %w", key, len(value), used, m.quota, ErrQuotaExceeded)
		}
	}

	m.items.Set(key, append([]byte(nil), value...))
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.items.Delete(key)
	return nil
}

// Used reports the bytes currently counted against the quota.
func (m *MemoryStore) Used() int {
	return m.usedExcept("")
}

func (m *MemoryStore) usedExcept(skip string) int {
	used := 0
	m.items.Range(func(k string, v []byte) bool {
		if k != skip {
			used += len(k) + len(v)
		}
		return true
	})
	return used
}
