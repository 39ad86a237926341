// Package dedup finds and removes documents whose set of distinct terms is
// identical to that of a document with a smaller id.
package dedup

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/logger"
)

// Source is the part of the index the detector reads from.
type Source interface {
	IDs() iter.Seq[int]
	WordFrequencies(id int) map[string]float64
}

// Remover is a Source that can also drop documents.
type Remover interface {
	Source
	RemoveDocument(id int)
}

// FindDuplicates scans documents in ascending id order and returns every id
// whose term set was already seen. Frequencies are ignored.
func FindDuplicates(src Source) []int {
	seen := make(map[string]struct{})
	var duplicates []int
	for id := range src.IDs() {
		key := termSetKey(src.WordFrequencies(id))
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// RemoveDuplicates removes every id reported by FindDuplicates and returns
// them. Detection completes before the first removal.
func RemoveDuplicates(ctx context.Context, r Remover) []int {
	log := logger.FromContext(ctx).With("component", "dedup")
	duplicates := FindDuplicates(r)
	for _, id := range duplicates {
		log.Info("found duplicate document", slog.Int("id", id))
		r.RemoveDocument(id)
	}
	return duplicates
}

// termSetKey joins the sorted terms with NUL, which no valid word contains.
func termSetKey(freqs map[string]float64) string {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return strings.Join(terms, "\x00")
}
