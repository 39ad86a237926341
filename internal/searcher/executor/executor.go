// Package executor evaluates batches of queries concurrently against a
// searcher while keeping results in input order.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

type Searcher interface {
	FindTopDocuments(ctx context.Context, raw string, pred ranker.Predicate) ([]ranker.Document, error)
}

type Option func(*Executor)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithWorkers bounds the number of queries evaluated at once. The default
// is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

type Executor struct {
	searcher Searcher
	workers  int
	group    singleflight.Group
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(searcher Searcher, opts ...Option) *Executor {
	e := &Executor{
		searcher: searcher,
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessQueries returns, for each query, the result of FindTopDocuments
// with the default predicate, at the same position as the query. Identical
// queries in flight at the same time are evaluated once. If any query
// fails, the first error is returned once every query has finished.
func (e *Executor) ProcessQueries(ctx context.Context, queries []string) ([][]ranker.Document, error) {
	start := time.Now()
	results := make([][]ranker.Document, len(queries))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, raw := range queries {
		g.Go(func() error {
			v, err, _ := e.group.Do(raw, func() (any, error) {
				return e.searcher.FindTopDocuments(ctx, raw, nil)
			})
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = slices.Clone(v.([]ranker.Document))
			return nil
		})
	}
	err := g.Wait()

	if e.metrics != nil {
		e.metrics.BatchQueriesTotal.Add(float64(len(queries)))
	}
	e.logger.Debug("batch processed",
		"queries", len(queries),
		"workers", e.workers,
		"duration_ms", time.Since(start).Milliseconds(),
		"failed", err != nil,
	)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessQueriesJoined concatenates the results of ProcessQueries in query
// order without re-sorting.
func (e *Executor) ProcessQueriesJoined(ctx context.Context, queries []string) ([]ranker.Document, error) {
	perQuery, err := e.ProcessQueries(ctx, queries)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range perQuery {
		total += len(docs)
	}
	joined := make([]ranker.Document, 0, total)
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
