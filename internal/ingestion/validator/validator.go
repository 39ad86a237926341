// Package validator checks corpus documents before they reach the index and
// returns per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

const (
	maxTextLength  = 1048576
	maxRatingCount = 10000
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateDocument checks id, status, text size and rating count. Word
// level validation is left to the index.
func ValidateDocument(doc *ingestion.Document) error {
	errs := make(map[string]string)

	if doc.ID < 0 {
		errs["id"] = fmt.Sprintf("id must not be negative, got %d", doc.ID)
	}
	if _, err := ResolveStatus(doc.Status); err != nil {
		errs["status"] = err.Error()
	}
	if len(doc.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if len(doc.Ratings) > maxRatingCount {
		errs["ratings"] = fmt.Sprintf("at most %d ratings are allowed", maxRatingCount)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ResolveStatus maps a status name or ordinal to an index.Status. An empty
// string resolves to StatusActual.
func ResolveStatus(raw string) (index.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return index.StatusActual, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		status := index.Status(n)
		if !status.Valid() {
			return 0, fmt.Errorf("status ordinal %d is out of range", n)
		}
		return status, nil
	}
	if status, ok := index.ParseStatus(raw); ok {
		return status, nil
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}
