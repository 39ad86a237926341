package ranker

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/shard"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

const (
	// ConcurrentShardCount is the shard count of the accumulator and the
	// exclusion set used by FindAllParallel.
	ConcurrentShardCount = 10000
	// PartitionCount is the number of tasks the plus terms are split into.
	PartitionCount = 10
)

// FindAllParallel returns the same documents as FindAll. Minus terms are
// collected into a concurrent exclusion set first; plus terms are then split
// into PartitionCount contiguous chunks scored by concurrent tasks into a
// sharded accumulator. Relevance values may differ from FindAll in the
// lowest bits because summation order across tasks is not fixed.
func FindAllParallel(src Source, q parser.Query, pred Predicate) ([]Document, error) {
	excluded := shard.NewSet[int](ConcurrentShardCount)
	var minus errgroup.Group
	for _, term := range q.Minus {
		minus.Go(func() error {
			postings, ok := src.Postings(term)
			if !ok {
				return nil
			}
			for id := range postings {
				excluded.Insert(id)
			}
			return nil
		})
	}
	if err := minus.Wait(); err != nil {
		return nil, err
	}

	relevance := shard.NewMap[int, float64](ConcurrentShardCount)
	var plus errgroup.Group
	for part, terms := range Partition(q.Plus, PartitionCount) {
		plus.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = apperrors.Newf(apperrors.ErrInternal, "ranking task %d panicked: %v", part, r)
				}
			}()
			for _, term := range terms {
				if err := accumulate(src, term, pred, excluded, relevance); err != nil {
					return fmt.Errorf("ranking task %d: %w", part, err)
				}
			}
			return nil
		})
	}
	if err := plus.Wait(); err != nil {
		return nil, err
	}
	return collect(src, relevance.Snapshot())
}

func accumulate(src Source, term string, pred Predicate, excluded *shard.Set[int], relevance *shard.Map[int, float64]) error {
	postings, ok := src.Postings(term)
	if !ok {
		return nil
	}
	idf := InverseDocumentFreq(src, len(postings))
	for id, freq := range postings {
		data, ok := src.Document(id)
		if !ok {
			return danglingPosting(term, id)
		}
		if pred(id, data.Status, data.Rating) && !excluded.Contains(id) {
			score := freq * idf
			relevance.Update(id, func(v float64) float64 { return v + score })
		}
	}
	return nil
}

// Partition splits terms into at most parts contiguous chunks whose sizes
// differ by no more than one. Empty chunks are not returned.
func Partition(terms []string, parts int) [][]string {
	if len(terms) == 0 || parts < 1 {
		return nil
	}
	parts = min(parts, len(terms))
	size, rest := len(terms)/parts, len(terms)%parts
	chunks := make([][]string, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < rest {
			end++
		}
		chunks = append(chunks, terms[start:end])
		start = end
	}
	return chunks
}
