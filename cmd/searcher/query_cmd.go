package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/analytics/requestqueue"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

type queryResult struct {
	Query   string            `json:"query"`
	Results []ranker.Document `json:"results"`
	Error   string            `json:"error,omitempty"`
}

type queryReport struct {
	Policy           string                     `json:"policy"`
	Queries          []queryResult              `json:"queries,omitempty"`
	Joined           []ranker.Document          `json:"joined,omitempty"`
	NoResultRequests *int                       `json:"no_result_requests,omitempty"`
	Stats            *analytics.AggregatedStats `json:"stats,omitempty"`
}

type queryOptions struct {
	status string
	batch  bool
	joined bool
	window bool
	stats  bool
	output string
}

// policySearcher runs every query with a fixed policy.
type policySearcher struct {
	server *searcher.Server
	policy searcher.Policy
}

func (p policySearcher) FindTopDocuments(ctx context.Context, raw string, pred ranker.Predicate) ([]ranker.Document, error) {
	return p.server.Search(ctx, p.policy, raw, pred)
}

func newQueryCommand(a *app) *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query [query...]",
		Short: "Run queries against the corpus and print the top documents",
		Long: "Run each query against the corpus and print up to five documents per query. " +
			"Without arguments the queries listed in the corpus file are used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(opts.output); err != nil {
				return err
			}
			if opts.batch && cmd.Flags().Changed("status") {
				return apperrors.New(apperrors.ErrInvalidInput, "--status cannot be combined with --batch")
			}
			if opts.joined && !opts.batch {
				return apperrors.New(apperrors.ErrInvalidInput, "--joined requires --batch")
			}
			return a.runQueries(cmd, args, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.status, "status", "s", "", "only rank documents with this status (default ACTUAL)")
	flags.BoolVarP(&opts.batch, "batch", "b", false, "evaluate all queries concurrently")
	flags.BoolVar(&opts.joined, "joined", false, "with --batch, print one flattened result list")
	flags.BoolVarP(&opts.window, "window", "w", false, "route queries through the request window and report empty results")
	flags.BoolVar(&opts.stats, "stats", false, "print query statistics")
	flags.StringVarP(&opts.output, "output", "o", "json", "output format (json|text)")
	return cmd
}

func (a *app) runQueries(cmd *cobra.Command, args []string, opts queryOptions) error {
	ctx := cmd.Context()
	status, err := parseStatusFlag(opts.status)
	if err != nil {
		return err
	}

	var agg *analytics.Aggregator
	var collector *analytics.Collector
	var serverOpts []searcher.Option
	if opts.stats || a.cfg.Analytics.Enabled {
		agg = analytics.NewAggregator(a.cfg.Analytics.TopQueries)
		collector = analytics.NewCollector(agg, a.cfg.Analytics.BufferSize)
		collector.Start(ctx)
		serverOpts = append(serverOpts, searcher.WithRecorder(collector))
	}

	server, corpus, err := a.load(ctx, serverOpts...)
	if err != nil {
		if collector != nil {
			collector.Close()
		}
		return err
	}
	queries := queriesFrom(args, corpus)

	report := queryReport{Policy: a.policy.String()}
	var firstErr error
	if opts.batch {
		exec := executor.New(policySearcher{server: server, policy: a.policy},
			executor.WithMetrics(a.metrics),
			executor.WithWorkers(a.cfg.Search.Workers),
		)
		if opts.joined {
			report.Joined, firstErr = exec.ProcessQueriesJoined(ctx, queries)
		} else {
			var perQuery [][]ranker.Document
			perQuery, firstErr = exec.ProcessQueries(ctx, queries)
			for i, docs := range perQuery {
				report.Queries = append(report.Queries, queryResult{Query: queries[i], Results: docs})
			}
		}
	} else {
		report.Queries, firstErr = a.runSequentially(ctx, server, queries, status, opts.window, &report)
	}

	if collector != nil {
		collector.Close()
		if opts.stats {
			stats := agg.Stats()
			report.Stats = &stats
		}
	}

	if err := printReport(cmd, report, opts.output); err != nil {
		return err
	}
	if err := a.finish(cmd); err != nil {
		return err
	}
	return firstErr
}

func (a *app) runSequentially(ctx context.Context, server *searcher.Server, queries []string, status index.Status, window bool, report *queryReport) ([]queryResult, error) {
	var queue *requestqueue.Queue
	if window {
		queue = requestqueue.New(policySearcher{server: server, policy: a.policy}, requestqueue.WithMetrics(a.metrics))
	}
	results := make([]queryResult, 0, len(queries))
	var firstErr error
	for _, raw := range queries {
		var docs []ranker.Document
		var err error
		if queue != nil {
			docs, err = queue.AddFindRequestByStatus(ctx, raw, status)
		} else {
			docs, err = server.FindTopDocumentsByStatus(ctx, a.policy, raw, status)
		}
		result := queryResult{Query: raw, Results: docs}
		if err != nil {
			result.Error = err.Error()
			if firstErr == nil {
				firstErr = err
			}
		}
		results = append(results, result)
	}
	if queue != nil {
		n := queue.NoResultRequests()
		report.NoResultRequests = &n
	}
	return results, firstErr
}

func printReport(cmd *cobra.Command, report queryReport, format string) error {
	if format == "json" {
		return writeJSON(cmd, report)
	}
	for _, q := range report.Queries {
		printf(cmd, "Results for request: %s\n", q.Query)
		if q.Error != "" {
			printf(cmd, "Error: %s\n", q.Error)
			continue
		}
		printDocuments(cmd, q.Results)
	}
	if report.Joined != nil {
		printDocuments(cmd, report.Joined)
	}
	if report.NoResultRequests != nil {
		printf(cmd, "Total empty requests: %d\n", *report.NoResultRequests)
	}
	if report.Stats != nil {
		printf(cmd, "Searches: %d (failed %d, empty %d), p50 %dus, p99 %dus\n",
			report.Stats.TotalSearches, report.Stats.FailedSearches, report.Stats.ZeroResultCount,
			report.Stats.P50LatencyMicros, report.Stats.P99LatencyMicros)
	}
	return nil
}

func printDocuments(cmd *cobra.Command, docs []ranker.Document) {
	for _, d := range docs {
		printf(cmd, "{ document_id = %d, relevance = %g, rating = %d }\n", d.ID, d.Relevance, d.Rating)
	}
}
