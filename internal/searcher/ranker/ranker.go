package ranker

import (
	"cmp"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

const (
	// MaxResultDocumentCount caps every ranked result list.
	MaxResultDocumentCount = 5
	// RelevanceEpsilon is the relevance difference below which two
	// documents are ordered by rating instead.
	RelevanceEpsilon = 1e-6
)

type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Predicate decides whether a document takes part in ranking.
type Predicate func(id int, status index.Status, rating int) bool

// StatusIs returns a Predicate accepting documents with the given status.
func StatusIs(status index.Status) Predicate {
	return func(_ int, s index.Status, _ int) bool {
		return s == status
	}
}

// Source is the read side of the index used for ranking.
type Source interface {
	DocumentCount() int
	Document(id int) (index.DocumentData, bool)
	Postings(term string) (map[int]float64, bool)
}

// InverseDocumentFreq returns ln(N / df) for a term with df > 0 postings.
func InverseDocumentFreq(src Source, df int) float64 {
	return math.Log(float64(src.DocumentCount()) / float64(df))
}

// FindAll scores every document matching q with TF-IDF. Documents that
// contain any minus term are dropped after scoring, whatever the predicate
// said about them.
func FindAll(src Source, q parser.Query, pred Predicate) ([]Document, error) {
	relevance := make(map[int]float64)
	for _, term := range q.Plus {
		postings, ok := src.Postings(term)
		if !ok {
			continue
		}
		idf := InverseDocumentFreq(src, len(postings))
		for id, freq := range postings {
			data, ok := src.Document(id)
			if !ok {
				return nil, danglingPosting(term, id)
			}
			if pred(id, data.Status, data.Rating) {
				relevance[id] += freq * idf
			}
		}
	}
	for _, term := range q.Minus {
		postings, ok := src.Postings(term)
		if !ok {
			continue
		}
		for id := range postings {
			delete(relevance, id)
		}
	}
	return collect(src, relevance)
}

func collect(src Source, relevance map[int]float64) ([]Document, error) {
	docs := make([]Document, 0, len(relevance))
	for id, rel := range relevance {
		data, ok := src.Document(id)
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrIndexConsistency, "ranked document %d is not in the store", id)
		}
		docs = append(docs, Document{
			ID:        id,
			Relevance: rel,
			Rating:    data.Rating,
		})
	}
	return docs, nil
}

func danglingPosting(term string, id int) error {
	return apperrors.Newf(apperrors.ErrIndexConsistency, "posting for term %q references unknown document %d", term, id)
}

// Compare orders documents by descending relevance; relevances closer than
// RelevanceEpsilon fall back to descending rating, then ascending id.
func Compare(a, b Document) int {
	if math.Abs(a.Relevance-b.Relevance) < RelevanceEpsilon {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
	return cmp.Compare(b.Relevance, a.Relevance)
}

// Rank sorts docs in place and truncates them to MaxResultDocumentCount.
func Rank(docs []Document) []Document {
	slices.SortFunc(docs, Compare)
	if len(docs) > MaxResultDocumentCount {
		docs = docs[:MaxResultDocumentCount]
	}
	return docs
}
