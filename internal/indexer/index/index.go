// Package index holds the document store and the two-way inverted index
// (term -> document -> frequency and document -> term -> frequency).
//
// An Index is not internally synchronized. Read methods may be called from
// many goroutines at once, but AddDocument and RemoveDocument must not run
// concurrently with any other method.
package index

import (
	"fmt"
	"iter"
	"log/slog"
	"runtime"

	"github.com/RoaringBitmap/roaring/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

type Index struct {
	stopWords      tokenizer.StopWords
	terms          *termPool
	wordToDocFreqs map[string]map[int]float64
	docToWordFreqs map[int]map[string]float64
	documents      map[int]DocumentData
	ids            *roaring64.Bitmap
	logger         *slog.Logger
}

func New(stopWords tokenizer.StopWords) *Index {
	return &Index{
		stopWords:      stopWords,
		terms:          newTermPool(),
		wordToDocFreqs: make(map[string]map[int]float64),
		docToWordFreqs: make(map[int]map[string]float64),
		documents:      make(map[int]DocumentData),
		ids:            roaring64.New(),
		logger:         slog.Default().With("component", "index"),
	}
}

func (ix *Index) StopWords() tokenizer.StopWords {
	return ix.stopWords
}

// AddDocument validates and indexes a document. On error nothing is changed.
func (ix *Index) AddDocument(id int, text string, status Status, ratings []int) error {
	if id < 0 {
		return apperrors.Newf(apperrors.ErrInvalidDocumentID, "document id %d is negative", id)
	}
	if _, exists := ix.documents[id]; exists {
		return apperrors.Newf(apperrors.ErrInvalidDocumentID, "document id %d is already used", id)
	}
	words, err := tokenizer.SplitIntoWordsNoStop(text, ix.stopWords)
	if err != nil {
		return fmt.Errorf("adding document %d: %w", id, err)
	}

	termFreqs := make(map[string]float64)
	if len(words) > 0 {
		invWordCount := 1.0 / float64(len(words))
		for _, word := range words {
			termFreqs[word] += invWordCount
		}
	}

	docFreqs := make(map[string]float64, len(termFreqs))
	for word, freq := range termFreqs {
		term := ix.terms.intern(word)
		bucket, ok := ix.wordToDocFreqs[term]
		if !ok {
			bucket = make(map[int]float64)
			ix.wordToDocFreqs[term] = bucket
		}
		bucket[id] = freq
		docFreqs[term] = freq
	}
	ix.docToWordFreqs[id] = docFreqs
	ix.documents[id] = DocumentData{
		Rating: ComputeAverageRating(ratings),
		Status: status,
	}
	ix.ids.Add(uint64(id))

	ix.logger.Debug("document indexed",
		"doc_id", id,
		"status", status.String(),
		"word_count", len(words),
		"term_count", len(docFreqs),
	)
	return nil
}

// RemoveDocument retracts a document from every structure. Removing an
// unknown id is a no-op.
func (ix *Index) RemoveDocument(id int) {
	freqs, ok := ix.docToWordFreqs[id]
	if !ok {
		return
	}
	for term := range freqs {
		delete(ix.wordToDocFreqs[term], id)
	}
	ix.retract(id, freqs)
}

// RemoveDocumentParallel behaves like RemoveDocument but spreads the
// per-term posting erasures over worker goroutines. Each worker owns a
// disjoint set of term buckets; the outer maps are only touched here.
func (ix *Index) RemoveDocumentParallel(id int) {
	freqs, ok := ix.docToWordFreqs[id]
	if !ok {
		return
	}
	buckets := make([]map[int]float64, 0, len(freqs))
	for term := range freqs {
		buckets = append(buckets, ix.wordToDocFreqs[term])
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(buckets) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(buckets); start += chunk {
		part := buckets[start:min(start+chunk, len(buckets))]
		g.Go(func() error {
			for _, bucket := range part {
				delete(bucket, id)
			}
			return nil
		})
	}
	_ = g.Wait()

	ix.retract(id, freqs)
}

// retract finishes a removal once the postings for id are gone.
func (ix *Index) retract(id int, freqs map[string]float64) {
	for term := range freqs {
		if len(ix.wordToDocFreqs[term]) == 0 {
			delete(ix.wordToDocFreqs, term)
		}
		ix.terms.release(term)
	}
	delete(ix.docToWordFreqs, id)
	delete(ix.documents, id)
	ix.ids.Remove(uint64(id))

	ix.logger.Debug("document removed", "doc_id", id, "term_count", len(freqs))
}

// WordFrequencies returns a copy of the term frequencies of a document, or
// an empty map when the id is unknown.
func (ix *Index) WordFrequencies(id int) map[string]float64 {
	freqs := ix.docToWordFreqs[id]
	result := make(map[string]float64, len(freqs))
	for term, freq := range freqs {
		result[term] = freq
	}
	return result
}

func (ix *Index) DocumentCount() int {
	return len(ix.documents)
}

func (ix *Index) TermCount() int {
	return len(ix.wordToDocFreqs)
}

func (ix *Index) Document(id int) (DocumentData, bool) {
	data, ok := ix.documents[id]
	return data, ok
}

// Postings returns the document -> frequency bucket of term. The map is
// owned by the index and must not be modified.
func (ix *Index) Postings(term string) (map[int]float64, bool) {
	bucket, ok := ix.wordToDocFreqs[term]
	return bucket, ok
}

// IDs yields the stored document ids in ascending order.
func (ix *Index) IDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := ix.ids.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// DocumentIDs returns the stored document ids in ascending order.
func (ix *Index) DocumentIDs() []int {
	raw := ix.ids.ToArray()
	ids := make([]int, len(raw))
	for i, id := range raw {
		ids[i] = int(id)
	}
	return ids
}

// Verify cross-checks the store, the id set, both index directions and the
// term pool, returning ErrIndexConsistency on the first mismatch found.
func (ix *Index) Verify() error {
	if got, want := ix.ids.GetCardinality(), uint64(len(ix.documents)); got != want {
		return apperrors.Newf(apperrors.ErrIndexConsistency, "id set holds %d ids, store holds %d documents", got, want)
	}
	if len(ix.docToWordFreqs) != len(ix.documents) {
		return apperrors.Newf(apperrors.ErrIndexConsistency, "reverse index holds %d documents, store holds %d", len(ix.docToWordFreqs), len(ix.documents))
	}
	for id := range ix.documents {
		if !ix.ids.Contains(uint64(id)) {
			return apperrors.Newf(apperrors.ErrIndexConsistency, "document %d missing from id set", id)
		}
		freqs, ok := ix.docToWordFreqs[id]
		if !ok {
			return apperrors.Newf(apperrors.ErrIndexConsistency, "document %d missing from reverse index", id)
		}
		for term, freq := range freqs {
			got, ok := ix.wordToDocFreqs[term][id]
			if !ok || got != freq {
				return apperrors.Newf(apperrors.ErrIndexConsistency, "term %q of document %d missing from forward index", term, id)
			}
		}
	}
	for term, bucket := range ix.wordToDocFreqs {
		if len(bucket) == 0 {
			return apperrors.Newf(apperrors.ErrIndexConsistency, "term %q has an empty posting bucket", term)
		}
		if ix.terms.refs(term) != len(bucket) {
			return apperrors.Newf(apperrors.ErrIndexConsistency, "term %q has %d pool references for %d postings", term, ix.terms.refs(term), len(bucket))
		}
		for id := range bucket {
			if _, ok := ix.docToWordFreqs[id][term]; !ok {
				return apperrors.Newf(apperrors.ErrIndexConsistency, "posting (%q, %d) missing from reverse index", term, id)
			}
		}
	}
	if ix.terms.len() != len(ix.wordToDocFreqs) {
		return apperrors.Newf(apperrors.ErrIndexConsistency, "term pool holds %d terms, forward index %d", ix.terms.len(), len(ix.wordToDocFreqs))
	}
	return nil
}
