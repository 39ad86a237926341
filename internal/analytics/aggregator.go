// Package analytics aggregates per-query search events into summary
// statistics: totals, latency percentiles and the most frequent queries.
package analytics

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	FailedSearches    int64        `json:"failed_searches"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMicros  float64      `json:"avg_latency_us"`
	P50LatencyMicros  int64        `json:"p50_latency_us"`
	P95LatencyMicros  int64        `json:"p95_latency_us"`
	P99LatencyMicros  int64        `json:"p99_latency_us"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator is safe for concurrent use.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     atomic.Int64
	failedSearches    atomic.Int64
	zeroResults       atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
	topN              int

	logger *slog.Logger
}

// NewAggregator keeps the topN most frequent queries in its stats.
func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		topN:              topN,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

func (a *Aggregator) Record(event SearchEvent) {
	a.totalSearches.Add(1)
	if event.Failed {
		a.failedSearches.Add(1)
		a.logger.Debug("failed search recorded", "query", event.Query, "trace_id", event.TraceID)
		return
	}
	if event.Returned == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMicros)
	a.queryCounts[event.Query]++
	if event.Returned == 0 {
		a.zeroResultQueries[event.Query]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches.Load(),
		FailedSearches:  a.failedSearches.Load(),
		ZeroResultCount: a.zeroResults.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMicros = float64(sum) / float64(len(sorted))
		stats.P50LatencyMicros = percentile(sorted, 50)
		stats.P95LatencyMicros = percentile(sorted, 95)
		stats.P99LatencyMicros = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, a.topN)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, a.topN)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by descending count, then query text.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
