package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// memo is a bounded per-run cache.
type memo[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

func newMemo[K comparable, V any](size int) *memo[K, V] {
	if size < 1 {
		size = 1
	}
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New[K, V](size)
	return &memo[K, V]{cache: cache}
}

// get returns the cached value for key, computing and storing it on a miss.
// Failed computations are not cached.
func (m *memo[K, V]) get(key K, compute func() (V, error)) (V, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	m.cache.Add(key, v)
	return v, nil
}

func (m *memo[K, V]) len() int {
	return m.cache.Len()
}

type chainKey struct {
	item string
	qty  int
}

type snapshotKey struct {
	item        string
	qty         int
	fingerprint uint64
}
