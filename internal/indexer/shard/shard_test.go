package shard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	assert.Equal(t, 0, route(0, 10))
	assert.Equal(t, 3, route(13, 10))
	assert.Equal(t, 9999, route(19999, 10000))
	assert.Equal(t, 2, route(uint8(7), 5))
}

func TestMapBasic(t *testing.T) {
	m := NewMap[int, float64](4)
	_, ok := m.Load(1)
	assert.False(t, ok)

	m.Update(1, func(v float64) float64 { return v + 0.5 })
	m.Update(1, func(v float64) float64 { return v + 0.25 })
	m.Store(5, 2)

	v, ok := m.Load(1)
	require.True(t, ok)
	assert.Equal(t, 0.75, v)
	assert.Equal(t, map[int]float64{1: 0.75, 5: 2}, m.Snapshot())

	m.Delete(1)
	m.Delete(100)
	assert.Equal(t, map[int]float64{5: 2}, m.Snapshot())
	assert.Equal(t, 4, m.ShardCount())
}

func TestMapConcurrentUpdates(t *testing.T) {
	m := NewMap[int, int](10000)
	const (
		workers = 16
		keys    = 500
		rounds  = 20
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				for k := 0; k < keys; k++ {
					m.Update(k*7919, func(v int) int { return v + 1 })
				}
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	require.Len(t, snap, keys)
	for k := 0; k < keys; k++ {
		assert.Equal(t, workers*rounds, snap[k*7919])
	}
}

func TestMapSnapshotDuringWrites(t *testing.T) {
	m := NewMap[int, int](8)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				m.Store(i%64, i)
			}
		}
	}()
	for i := 0; i < 100; i++ {
		snaps := make(chan map[int]int, 2)
		go func() { snaps <- m.Snapshot() }()
		go func() { snaps <- m.Snapshot() }()
		assert.LessOrEqual(t, len(<-snaps), 64)
		assert.LessOrEqual(t, len(<-snaps), 64)
	}
	close(done)
	wg.Wait()
}

func TestSetConcurrentInsert(t *testing.T) {
	s := NewSet[int](10000)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.Insert(i*8 + w)
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, s.Snapshot(), 8000)
	assert.True(t, s.Contains(0))
	assert.True(t, s.Contains(7999))
	assert.False(t, s.Contains(8000))
}

func TestNewPanicsOnZeroShards(t *testing.T) {
	assert.Panics(t, func() { NewMap[int, int](0) })
	assert.Panics(t, func() { NewSet[int](-1) })
}

func BenchmarkMapUpdateParallel(b *testing.B) {
	m := NewMap[int, float64](10000)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Update(i%50000, func(v float64) float64 { return v + 0.1 })
			i++
		}
	})
}
