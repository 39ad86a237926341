// Package tokenizer splits document and query text into words, validates
// them, and holds the stop-word set shared by indexing and querying.
package tokenizer

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

// DefaultStopWords is the stop-word list used when no list is configured.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at",
	"be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on",
	"or", "that", "the", "to", "was", "were",
	"will", "with", "this", "but", "they",
}

// StopWords is an immutable set of terms excluded from indexing and querying.
type StopWords map[string]struct{}

// NewStopWords builds a set from words. Empty words are skipped; a word with
// a control character fails with ErrInvalidWord.
func NewStopWords(words []string) (StopWords, error) {
	set := make(StopWords, len(words))
	for _, word := range words {
		if err := ValidateWord(word); err != nil {
			return nil, fmt.Errorf("stop word %q: %w", word, err)
		}
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	return set, nil
}

// ParseStopWords builds a set from a single space-separated string.
func ParseStopWords(text string) (StopWords, error) {
	return NewStopWords(SplitIntoWords(text))
}

func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Words returns the stop words in ascending order.
func (s StopWords) Words() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// SplitIntoWords splits text on the space character and drops empty tokens.
// Other whitespace is kept inside the token so that validation rejects it.
func SplitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
}

// ValidateWord fails with ErrInvalidWord when word contains an ASCII control
// character (a byte below the space character).
func ValidateWord(word string) error {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return apperrors.Newf(apperrors.ErrInvalidWord, "control character 0x%02x at offset %d", word[i], i)
		}
	}
	return nil
}

// SplitIntoWordsNoStop splits and validates text, returning the words that
// are not stop words. Nothing is returned unless every token is valid.
func SplitIntoWordsNoStop(text string, stop StopWords) ([]string, error) {
	tokens := SplitIntoWords(text)
	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if err := ValidateWord(token); err != nil {
			return nil, err
		}
		if !stop.Contains(token) {
			words = append(words, token)
		}
	}
	return words, nil
}

// QueryWord is a single parsed query token.
type QueryWord struct {
	Term    string
	IsMinus bool
	IsStop  bool
}

// ParseQueryWord parses one query token. A leading '-' marks negation; a bare
// '-', a doubled '-' or a control character fail with ErrInvalidQueryToken.
func ParseQueryWord(token string, stop StopWords) (QueryWord, error) {
	if token == "" {
		return QueryWord{}, apperrors.New(apperrors.ErrInvalidQueryToken, "empty token")
	}
	isMinus := false
	term := token
	if term[0] == '-' {
		isMinus = true
		term = term[1:]
	}
	if term == "" {
		return QueryWord{}, apperrors.New(apperrors.ErrInvalidQueryToken, "no word after minus")
	}
	if term[0] == '-' {
		return QueryWord{}, apperrors.Newf(apperrors.ErrInvalidQueryToken, "more than one minus in %q", token)
	}
	if err := ValidateWord(term); err != nil {
		return QueryWord{}, apperrors.Newf(apperrors.ErrInvalidQueryToken, "token %q: %v", token, err)
	}
	return QueryWord{
		Term:    term,
		IsMinus: isMinus,
		IsStop:  stop.Contains(term),
	}, nil
}
