package parser

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
)

// Query holds the distinct plus and minus terms of a raw query, each sorted
// ascending. A term given both plain and minus-prefixed lands in both.
type Query struct {
	Plus  []string
	Minus []string
	Raw   string
}

// Parse splits raw into tokens, drops stop words, and sorts the remaining
// terms into the plus and minus sets. Any malformed token fails the whole
// query with ErrInvalidQueryToken.
func Parse(raw string, stop tokenizer.StopWords) (Query, error) {
	query := Query{
		Plus:  make([]string, 0),
		Minus: make([]string, 0),
		Raw:   raw,
	}
	for _, token := range tokenizer.SplitIntoWords(raw) {
		word, err := tokenizer.ParseQueryWord(token, stop)
		if err != nil {
			return Query{}, err
		}
		if word.IsStop {
			continue
		}
		if word.IsMinus {
			query.Minus = append(query.Minus, word.Term)
		} else {
			query.Plus = append(query.Plus, word.Term)
		}
	}
	query.Plus = sortUnique(query.Plus)
	query.Minus = sortUnique(query.Minus)
	return query, nil
}

func sortUnique(terms []string) []string {
	slices.Sort(terms)
	return slices.Compact(terms)
}

func (q Query) Empty() bool {
	return len(q.Plus) == 0 && len(q.Minus) == 0
}
