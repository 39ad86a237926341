// Package metrics defines the Prometheus collectors used by the search
// engine and can render a registry in the text exposition format.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          *prometheus.HistogramVec
	SearchResultsCount     prometheus.Histogram
	RankingFailuresTotal   *prometheus.CounterVec
	DocsIndexedTotal       prometheus.Counter
	DocsRejectedTotal      prometheus.Counter
	DocsRemovedTotal       *prometheus.CounterVec
	DuplicatesRemovedTotal prometheus.Counter
	IndexedDocuments       prometheus.Gauge
	NoResultRequests       prometheus.Gauge
	BatchQueriesTotal      prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is useful in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by ranking policy and result type (hit, zero_result, error).",
			},
			[]string{"policy", "result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"policy"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		RankingFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranking_failures_total",
				Help: "Ranking passes aborted by a failed task, by policy.",
			},
			[]string{"policy"},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		DocsRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_rejected_total",
				Help: "Total documents rejected by validation.",
			},
		),
		DocsRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_removed_total",
				Help: "Total documents removed, by removal policy.",
			},
			[]string{"policy"},
		),
		DuplicatesRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duplicates_removed_total",
				Help: "Total documents removed as duplicates.",
			},
		),
		IndexedDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexed_documents",
				Help: "Number of documents currently in the index.",
			},
		),
		NoResultRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "no_result_requests",
				Help: "Zero-result requests within the request queue window.",
			},
		),
		BatchQueriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "batch_queries_total",
				Help: "Total queries evaluated through batch processing.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.SearchQueriesTotal,
			m.SearchLatency,
			m.SearchResultsCount,
			m.RankingFailuresTotal,
			m.DocsIndexedTotal,
			m.DocsRejectedTotal,
			m.DocsRemovedTotal,
			m.DuplicatesRemovedTotal,
			m.IndexedDocuments,
			m.NoResultRequests,
			m.BatchQueriesTotal,
		)
	}

	return m
}

// WriteText gathers g and writes every metric family to w in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
