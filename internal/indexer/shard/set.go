package shard

import "sync"

type setShard[K Key] struct {
	mu sync.Mutex
	m  map[K]struct{}
}

// Set is a concurrent set of integer keys with per-shard locking.
type Set[K Key] struct {
	shards []setShard[K]
}

// NewSet creates a Set with shardCount shards. It panics if shardCount < 1.
func NewSet[K Key](shardCount int) *Set[K] {
	if shardCount < 1 {
		panic("shard: shard count must be positive")
	}
	return &Set[K]{shards: make([]setShard[K], shardCount)}
}

func (s *Set[K]) shard(key K) *setShard[K] {
	return &s.shards[route(key, len(s.shards))]
}

func (s *Set[K]) Insert(key K) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.m == nil {
		sh.m = make(map[K]struct{})
	}
	sh.m[key] = struct{}{}
}

func (s *Set[K]) Contains(key K) bool {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.m[key]
	return ok
}

// Snapshot returns every key, locking all shards in ascending order.
func (s *Set[K]) Snapshot() map[K]struct{} {
	for i := range s.shards {
		s.shards[i].mu.Lock()
	}
	defer func() {
		for i := range s.shards {
			s.shards[i].mu.Unlock()
		}
	}()

	result := make(map[K]struct{})
	for i := range s.shards {
		for k := range s.shards[i].m {
			result[k] = struct{}{}
		}
	}
	return result
}
