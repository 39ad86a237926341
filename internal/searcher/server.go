// Package searcher is the entry point of the search engine. A Server owns
// the index and runs queries against it with either ranking policy,
// recording metrics and trace spans along the way.
package searcher

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/tracing"
)

// Policy selects how a query is ranked.
type Policy int

const (
	Sequential Policy = iota
	Parallel
)

func (p Policy) String() string {
	if p == Parallel {
		return "parallel"
	}
	return "sequential"
}

// ParsePolicy maps "sequential" or "parallel" to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "sequential", "seq":
		return Sequential, nil
	case "parallel", "par":
		return Parallel, nil
	default:
		return Sequential, apperrors.Newf(apperrors.ErrInvalidInput, "unknown execution policy %q", name)
	}
}

type Option func(*Server)

// WithMetrics makes the server report to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithRecorder sends one analytics.SearchEvent per query to r.
func WithRecorder(r analytics.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// Server is not safe for concurrent mutation. Queries may run concurrently
// with each other but not with AddDocument, RemoveDocument or
// RemoveDuplicates.
type Server struct {
	index    *index.Index
	metrics  *metrics.Metrics
	recorder analytics.Recorder
	logger   *slog.Logger
}

// New creates a server whose stop words are the given words.
func New(stopWords []string, opts ...Option) (*Server, error) {
	stop, err := tokenizer.NewStopWords(stopWords)
	if err != nil {
		return nil, fmt.Errorf("building stop words: %w", err)
	}
	return newServer(stop, opts), nil
}

// NewFromText creates a server from a space-separated stop word string.
func NewFromText(stopWords string, opts ...Option) (*Server, error) {
	stop, err := tokenizer.ParseStopWords(stopWords)
	if err != nil {
		return nil, fmt.Errorf("building stop words: %w", err)
	}
	return newServer(stop, opts), nil
}

func newServer(stop tokenizer.StopWords, opts []Option) *Server {
	s := &Server{
		index:  index.New(stop),
		logger: logger.WithComponent("searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) AddDocument(id int, text string, status index.Status, ratings []int) error {
	if err := s.index.AddDocument(id, text, status, ratings); err != nil {
		if s.metrics != nil {
			s.metrics.DocsRejectedTotal.Inc()
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.IndexedDocuments.Set(float64(s.index.DocumentCount()))
	}
	return nil
}

// RemoveDocument removes a document. Unknown ids are ignored.
func (s *Server) RemoveDocument(id int) {
	s.remove(Sequential, id)
}

// RemoveDocumentParallel removes a document, erasing its postings from
// several goroutines.
func (s *Server) RemoveDocumentParallel(id int) {
	s.remove(Parallel, id)
}

func (s *Server) remove(policy Policy, id int) {
	if _, ok := s.index.Document(id); !ok {
		return
	}
	if policy == Parallel {
		s.index.RemoveDocumentParallel(id)
	} else {
		s.index.RemoveDocument(id)
	}
	if s.metrics != nil {
		s.metrics.DocsRemovedTotal.WithLabelValues(policy.String()).Inc()
		s.metrics.IndexedDocuments.Set(float64(s.index.DocumentCount()))
	}
}

// FindTopDocuments ranks documents sequentially. A nil pred keeps only
// documents with StatusActual.
func (s *Server) FindTopDocuments(ctx context.Context, raw string, pred ranker.Predicate) ([]ranker.Document, error) {
	return s.Search(ctx, Sequential, raw, pred)
}

// FindTopDocumentsParallel is FindTopDocuments on the concurrent path.
func (s *Server) FindTopDocumentsParallel(ctx context.Context, raw string, pred ranker.Predicate) ([]ranker.Document, error) {
	return s.Search(ctx, Parallel, raw, pred)
}

// FindTopDocumentsByStatus keeps only documents with the given status.
func (s *Server) FindTopDocumentsByStatus(ctx context.Context, policy Policy, raw string, status index.Status) ([]ranker.Document, error) {
	return s.Search(ctx, policy, raw, ranker.StatusIs(status))
}

// Search parses raw, ranks the matching documents with policy, and returns
// at most ranker.MaxResultDocumentCount of them.
func (s *Server) Search(ctx context.Context, policy Policy, raw string, pred ranker.Predicate) ([]ranker.Document, error) {
	if pred == nil {
		pred = ranker.StatusIs(index.StatusActual)
	}
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "find_top_documents")
	span.SetAttr("policy", policy.String())
	defer func() {
		span.End()
		span.Log(ctx, s.logger)
	}()

	_, parseSpan := tracing.StartChildSpan(ctx, "parse")
	query, err := parser.Parse(raw, s.index.StopWords())
	parseSpan.SetAttr("plus_terms", len(query.Plus))
	parseSpan.SetAttr("minus_terms", len(query.Minus))
	parseSpan.End()
	if err != nil {
		s.observe(ctx, policy, raw, "error", 0, start)
		return nil, fmt.Errorf("parsing query %q: %w", raw, err)
	}

	_, rankSpan := tracing.StartChildSpan(ctx, "rank")
	var docs []ranker.Document
	if policy == Parallel {
		docs, err = ranker.FindAllParallel(s.index, query, pred)
	} else {
		docs, err = ranker.FindAll(s.index, query, pred)
	}
	rankSpan.SetAttr("candidates", len(docs))
	rankSpan.End()
	if err != nil {
		s.observe(ctx, policy, raw, "error", 0, start)
		if s.metrics != nil {
			s.metrics.RankingFailuresTotal.WithLabelValues(policy.String()).Inc()
		}
		logger.FromContext(ctx).Error("ranking failed",
			"component", "searcher",
			"policy", policy.String(),
			"query", raw,
			"error", err,
		)
		return nil, fmt.Errorf("ranking query %q: %w", raw, err)
	}

	_, sortSpan := tracing.StartChildSpan(ctx, "sort")
	docs = ranker.Rank(docs)
	sortSpan.End()

	resultType := "hit"
	if len(docs) == 0 {
		resultType = "zero_result"
	}
	s.observe(ctx, policy, raw, resultType, len(docs), start)
	return docs, nil
}

func (s *Server) observe(ctx context.Context, policy Policy, raw, resultType string, results int, start time.Time) {
	elapsed := time.Since(start)
	if s.recorder != nil {
		traceID, _ := logger.TraceIDFromContext(ctx)
		s.recorder.Record(analytics.SearchEvent{
			Query:         raw,
			Policy:        policy.String(),
			Returned:      results,
			LatencyMicros: elapsed.Microseconds(),
			Failed:        resultType == "error",
			TraceID:       traceID,
			Timestamp:     start,
		})
	}
	if s.metrics == nil {
		return
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(policy.String(), resultType).Inc()
	s.metrics.SearchLatency.WithLabelValues(policy.String()).Observe(elapsed.Seconds())
	if resultType != "error" {
		s.metrics.SearchResultsCount.Observe(float64(results))
	}
}

// MatchDocument returns the plus terms of raw that occur in document id, in
// ascending order, together with the document's status. The list is empty
// when the document contains any minus term.
func (s *Server) MatchDocument(raw string, id int) ([]string, index.Status, error) {
	query, data, err := s.prepareMatch(raw, id)
	if err != nil {
		return nil, 0, err
	}
	for _, term := range query.Minus {
		if s.contains(term, id) {
			return []string{}, data.Status, nil
		}
	}
	matched := make([]string, 0, len(query.Plus))
	for _, term := range query.Plus {
		if s.contains(term, id) {
			matched = append(matched, term)
		}
	}
	return matched, data.Status, nil
}

// MatchDocumentParallel is MatchDocument with the term lookups spread over
// goroutines.
func (s *Server) MatchDocumentParallel(raw string, id int) ([]string, index.Status, error) {
	query, data, err := s.prepareMatch(raw, id)
	if err != nil {
		return nil, 0, err
	}

	var excluded atomic.Bool
	var minus errgroup.Group
	minus.SetLimit(runtime.GOMAXPROCS(0))
	for _, term := range query.Minus {
		minus.Go(func() error {
			if s.contains(term, id) {
				excluded.Store(true)
			}
			return nil
		})
	}
	_ = minus.Wait()
	if excluded.Load() {
		return []string{}, data.Status, nil
	}

	found := make([]bool, len(query.Plus))
	var plus errgroup.Group
	plus.SetLimit(runtime.GOMAXPROCS(0))
	for i, term := range query.Plus {
		plus.Go(func() error {
			found[i] = s.contains(term, id)
			return nil
		})
	}
	_ = plus.Wait()

	matched := make([]string, 0, len(query.Plus))
	for i, term := range query.Plus {
		if found[i] {
			matched = append(matched, term)
		}
	}
	return matched, data.Status, nil
}

func (s *Server) prepareMatch(raw string, id int) (parser.Query, index.DocumentData, error) {
	query, err := parser.Parse(raw, s.index.StopWords())
	if err != nil {
		return parser.Query{}, index.DocumentData{}, fmt.Errorf("parsing query %q: %w", raw, err)
	}
	data, ok := s.index.Document(id)
	if !ok {
		return parser.Query{}, index.DocumentData{}, apperrors.Newf(apperrors.ErrDocumentNotFound, "document %d not found", id)
	}
	return query, data, nil
}

func (s *Server) contains(term string, id int) bool {
	postings, ok := s.index.Postings(term)
	if !ok {
		return false
	}
	_, ok = postings[id]
	return ok
}

// RemoveDuplicates drops every document whose term set repeats that of a
// document with a smaller id and returns the removed ids.
func (s *Server) RemoveDuplicates(ctx context.Context) []int {
	removed := dedup.RemoveDuplicates(ctx, s)
	if s.metrics != nil {
		s.metrics.DuplicatesRemovedTotal.Add(float64(len(removed)))
	}
	return removed
}

func (s *Server) WordFrequencies(id int) map[string]float64 {
	return s.index.WordFrequencies(id)
}

func (s *Server) DocumentCount() int {
	return s.index.DocumentCount()
}

// IDs yields document ids in ascending order.
func (s *Server) IDs() iter.Seq[int] {
	return s.index.IDs()
}

func (s *Server) DocumentIDs() []int {
	return s.index.DocumentIDs()
}

func (s *Server) Document(id int) (index.DocumentData, bool) {
	return s.index.Document(id)
}

// Verify checks the internal consistency of the index.
func (s *Server) Verify() error {
	return s.index.Verify()
}
