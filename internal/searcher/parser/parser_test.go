package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

func stopWords(t *testing.T, text string) tokenizer.StopWords {
	t.Helper()
	stop, err := tokenizer.ParseStopWords(text)
	require.NoError(t, err)
	return stop
}

func TestParse(t *testing.T) {
	stop := stopWords(t, "in the and")
	tests := []struct {
		name  string
		raw   string
		plus  []string
		minus []string
	}{
		{"plain", "white cat", []string{"cat", "white"}, []string{}},
		{"minus", "fluffy -dog cat", []string{"cat", "fluffy"}, []string{"dog"}},
		{"duplicates collapse", "cat cat -dog -dog", []string{"cat"}, []string{"dog"}},
		{"stop words dropped", "cat in the -and city", []string{"cat", "city"}, []string{}},
		{"term in both sets", "cat -cat", []string{"cat"}, []string{"cat"}},
		{"empty", "   ", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw, stop)
			require.NoError(t, err)
			assert.Equal(t, tt.plus, q.Plus)
			assert.Equal(t, tt.minus, q.Minus)
			assert.Equal(t, tt.raw, q.Raw)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	stop := stopWords(t, "")
	for _, raw := range []string{"cat -", "cat --dog", "ca\x01t", "-do\x1fg"} {
		_, err := Parse(raw, stop)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQueryToken, "query %q", raw)
	}
}

func TestQueryEmpty(t *testing.T) {
	q, err := Parse("in", stopWords(t, "in"))
	require.NoError(t, err)
	assert.True(t, q.Empty())

	q, err = Parse("-cat", stopWords(t, ""))
	require.NoError(t, err)
	assert.False(t, q.Empty())
}

func BenchmarkParse(b *testing.B) {
	stop, err := tokenizer.NewStopWords(tokenizer.DefaultStopWords)
	require.NoError(b, err)
	queries := []string{
		"search",
		"distributed search engine",
		"inverted index -segment -merge",
		"the quick brown fox -lazy -dog jumps over",
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(queries[i%len(queries)], stop); err != nil {
			b.Fatal(err)
		}
	}
}
