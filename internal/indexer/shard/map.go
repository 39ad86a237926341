package shard

import "sync"

type mapShard[K Key, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// Map is a concurrent map with per-shard locking. Shard maps are allocated
// on first write, so a large shard count costs little until it is used.
type Map[K Key, V any] struct {
	shards []mapShard[K, V]
}

// NewMap creates a Map with shardCount shards. It panics if shardCount < 1.
func NewMap[K Key, V any](shardCount int) *Map[K, V] {
	if shardCount < 1 {
		panic("shard: shard count must be positive")
	}
	return &Map[K, V]{shards: make([]mapShard[K, V], shardCount)}
}

func (m *Map[K, V]) shard(key K) *mapShard[K, V] {
	return &m.shards[route(key, len(m.shards))]
}

// Update replaces the value stored at key with fn(current), where current is
// the zero value for a missing key. fn runs with only key's shard locked.
func (m *Map[K, V]) Update(key K, fn func(V) V) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[K]V)
	}
	s.m[key] = fn(s.m[key])
}

func (m *Map[K, V]) Store(key K, value V) {
	m.Update(key, func(V) V { return value })
}

func (m *Map[K, V]) Load(key K) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (m *Map[K, V]) Delete(key K) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}

// Snapshot merges every shard into one ordinary map. It locks all shards in
// ascending shard order before copying, so the result is a consistent view
// and concurrent snapshots cannot deadlock. It is expensive and meant to be
// called once writers are done.
func (m *Map[K, V]) Snapshot() map[K]V {
	for i := range m.shards {
		m.shards[i].mu.Lock()
	}
	defer func() {
		for i := range m.shards {
			m.shards[i].mu.Unlock()
		}
	}()

	size := 0
	for i := range m.shards {
		size += len(m.shards[i].m)
	}
	result := make(map[K]V, size)
	for i := range m.shards {
		for k, v := range m.shards[i].m {
			result[k] = v
		}
	}
	return result
}
