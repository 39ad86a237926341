package executor

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

func newServer(t *testing.T) *searcher.Server {
	t.Helper()
	s, err := searcher.NewFromText("and with")
	require.NoError(t, err)
	texts := []string{
		"funny pet and nasty rat",
		"funny pet with curly hair",
		"funny pet and not very nasty rat",
		"pet with rat and rat and rat",
		"nasty rat with curly hair",
	}
	for i, text := range texts {
		require.NoError(t, s.AddDocument(i+1, text, index.StatusActual, []int{1, 2}))
	}
	return s
}

var queries = []string{"nasty rat -not", "not very funny nasty pet", "curly hair", "nasty rat -not"}

func TestProcessQueries(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	got, err := New(s, WithWorkers(2)).ProcessQueries(ctx, queries)
	require.NoError(t, err)
	require.Len(t, got, len(queries))
	for i, raw := range queries {
		want, err := s.FindTopDocuments(ctx, raw, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got[i], raw)
	}

	assert.Len(t, got[0], 3)
	assert.Len(t, got[1], 5)
	assert.Len(t, got[2], 2)
}

func TestDuplicateQueriesGetOwnSlices(t *testing.T) {
	got, err := New(newServer(t)).ProcessQueries(context.Background(), queries)
	require.NoError(t, err)
	require.NotEmpty(t, got[0])

	want := got[3][0]
	got[0][0].ID = -1
	assert.Equal(t, want, got[3][0])
}

func TestProcessQueriesJoined(t *testing.T) {
	s := newServer(t)
	e := New(s)
	ctx := context.Background()

	perQuery, err := e.ProcessQueries(ctx, queries)
	require.NoError(t, err)
	joined, err := e.ProcessQueriesJoined(ctx, queries)
	require.NoError(t, err)

	var want []ranker.Document
	for _, docs := range perQuery {
		want = append(want, docs...)
	}
	assert.Equal(t, want, joined)
	assert.Len(t, joined, 13)
}

func TestProcessQueriesError(t *testing.T) {
	m := metrics.New(nil)
	e := New(newServer(t), WithMetrics(m))

	_, err := e.ProcessQueries(context.Background(), []string{"curly", "rat --pet", "hair"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidQueryToken)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.BatchQueriesTotal))

	_, err = e.ProcessQueriesJoined(context.Background(), []string{"- "})
	assert.Error(t, err)
}

func TestEmptyBatch(t *testing.T) {
	got, err := New(newServer(t)).ProcessQueries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type countingSearcher struct {
	calls atomic.Int64
}

func (c *countingSearcher) FindTopDocuments(_ context.Context, raw string, _ ranker.Predicate) ([]ranker.Document, error) {
	c.calls.Add(1)
	return []ranker.Document{{ID: len(raw)}}, nil
}

func TestEveryQueryIsEvaluated(t *testing.T) {
	cs := &countingSearcher{}
	batch := []string{"a", "bb", "ccc", "dddd"}
	got, err := New(cs, WithWorkers(1)).ProcessQueries(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cs.calls.Load())
	for i, docs := range got {
		assert.Equal(t, i+1, docs[0].ID)
	}
}
