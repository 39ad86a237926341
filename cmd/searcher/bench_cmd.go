package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

type benchOptions struct {
	concurrency int
	duration    time.Duration
	requests    int64
}

func newBenchCommand(a *app) *cobra.Command {
	var opts benchOptions
	cmd := &cobra.Command{
		Use:   "bench [query...]",
		Short: "Run queries from concurrent workers and report latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.concurrency < 1 {
				return apperrors.New(apperrors.ErrInvalidInput, "--concurrency must be at least 1")
			}
			agg := analytics.NewAggregator(a.cfg.Analytics.TopQueries)
			server, corpus, err := a.load(cmd.Context(), searcher.WithRecorder(agg))
			if err != nil {
				return err
			}
			queries := queriesFrom(args, corpus)
			if len(queries) == 0 {
				return apperrors.New(apperrors.ErrInvalidInput, "no queries to run")
			}

			start := time.Now()
			total := runBench(cmd.Context(), server, a.policy, queries, opts)
			elapsed := time.Since(start)

			stats := agg.Stats()
			printf(cmd, "=== Search Benchmark ===\n")
			printf(cmd, "Policy:          %s\n", a.policy)
			printf(cmd, "Concurrency:     %d\n", opts.concurrency)
			printf(cmd, "Queries:         %d unique\n", len(queries))
			printf(cmd, "Total Requests:  %d\n", total)
			printf(cmd, "Errors:          %d\n", stats.FailedSearches)
			printf(cmd, "Empty Results:   %d\n", stats.ZeroResultCount)
			if total > 0 {
				printf(cmd, "Requests/sec:    %.2f\n", float64(total)/elapsed.Seconds())
			}
			printf(cmd, "\n=== Latency ===\n")
			printf(cmd, "Avg:    %.1fus\n", stats.AvgLatencyMicros)
			printf(cmd, "P50:    %dus\n", stats.P50LatencyMicros)
			printf(cmd, "P95:    %dus\n", stats.P95LatencyMicros)
			printf(cmd, "P99:    %dus\n", stats.P99LatencyMicros)
			return a.finish(cmd)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.concurrency, "concurrency", 10, "number of concurrent workers")
	flags.DurationVar(&opts.duration, "duration", 5*time.Second, "benchmark duration")
	flags.Int64Var(&opts.requests, "requests", 0, "stop after this many requests (0 means no limit)")
	return cmd
}

// runBench cycles through queries from every worker until the duration
// elapses or the request budget is spent, returning the number of requests.
func runBench(ctx context.Context, server *searcher.Server, policy searcher.Policy, queries []string, opts benchOptions) int64 {
	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	var issued atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			queryIdx := workerID
			for ctx.Err() == nil {
				n := issued.Add(1)
				if opts.requests > 0 && n > opts.requests {
					issued.Add(-1)
					return
				}
				_, _ = server.Search(ctx, policy, queries[queryIdx%len(queries)], nil)
				queryIdx++
			}
		}(w)
	}
	wg.Wait()
	return issued.Load()
}
