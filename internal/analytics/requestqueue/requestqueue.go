// Package requestqueue tracks how many of the most recent search requests
// returned no documents. Each request advances a logical clock by one
// minute and the window covers one day.
package requestqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

// MinutesPerDay is the window capacity.
const MinutesPerDay = 1440

type Searcher interface {
	FindTopDocuments(ctx context.Context, raw string, pred ranker.Predicate) ([]ranker.Document, error)
}

type Option func(*Queue)

// WithMetrics publishes the zero-result count on m.NoResultRequests.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.gauge = m.NoResultRequests }
}

// Queue is a fixed-capacity ring of request outcomes. It is safe for
// concurrent use.
type Queue struct {
	searcher Searcher

	mu        sync.Mutex
	empty     []bool
	head      int
	size      int
	noResults int

	gauge  prometheus.Gauge
	logger *slog.Logger
}

func New(searcher Searcher, opts ...Option) *Queue {
	q := &Queue{
		searcher: searcher,
		empty:    make([]bool, MinutesPerDay),
		logger:   slog.Default().With("component", "request-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AddFindRequest runs the query and records whether it found anything. A
// nil pred keeps only documents with StatusActual. Failed queries are
// returned unrecorded.
func (q *Queue) AddFindRequest(ctx context.Context, raw string, pred ranker.Predicate) ([]ranker.Document, error) {
	docs, err := q.searcher.FindTopDocuments(ctx, raw, pred)
	if err != nil {
		return nil, fmt.Errorf("request queue: %w", err)
	}
	q.push(len(docs) == 0)
	return docs, nil
}

// AddFindRequestByStatus is AddFindRequest filtered to one status.
func (q *Queue) AddFindRequestByStatus(ctx context.Context, raw string, status index.Status) ([]ranker.Document, error) {
	return q.AddFindRequest(ctx, raw, ranker.StatusIs(status))
}

func (q *Queue) push(empty bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == MinutesPerDay {
		if q.empty[q.head] {
			q.noResults--
		}
		q.empty[q.head] = empty
		q.head = (q.head + 1) % MinutesPerDay
	} else {
		q.empty[(q.head+q.size)%MinutesPerDay] = empty
		q.size++
	}
	if empty {
		q.noResults++
	}
	if q.gauge != nil {
		q.gauge.Set(float64(q.noResults))
	}
	q.logger.Debug("request recorded", "empty", empty, "window", q.size, "no_results", q.noResults)
}

// NoResultRequests returns the number of requests in the window that
// returned no documents.
func (q *Queue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResults
}

// Len returns the number of requests currently in the window.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
