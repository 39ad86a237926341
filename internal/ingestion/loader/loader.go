// Package loader reads corpus files and feeds their documents to an index.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/logger"
)

type Indexer interface {
	AddDocument(id int, text string, status index.Status, ratings []int) error
}

// Rejection records a document that was not indexed.
type Rejection struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// Summary describes the outcome of Load.
type Summary struct {
	Indexed  int         `json:"indexed"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// ReadFile decodes the corpus file at path.
func ReadFile(path string) (*ingestion.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	corpus, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("corpus file %s: %w", path, err)
	}
	return corpus, nil
}

// Decode parses a YAML corpus. Unknown keys are rejected.
func Decode(r io.Reader) (*ingestion.Corpus, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var corpus ingestion.Corpus
	if err := dec.Decode(&corpus); err != nil && err != io.EOF {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "decoding corpus: %v", err)
	}
	return &corpus, nil
}

// Load validates each document and adds it to ix in file order. Invalid
// documents are skipped and reported in the Summary unless strict is set,
// in which case the first failure is returned.
func Load(ctx context.Context, ix Indexer, corpus *ingestion.Corpus, strict bool) (Summary, error) {
	log := logger.FromContext(ctx).With("component", "corpus-loader")
	var summary Summary
	for i := range corpus.Documents {
		doc := &corpus.Documents[i]
		err := add(ix, doc)
		if err == nil {
			summary.Indexed++
			continue
		}
		if strict {
			return summary, fmt.Errorf("loading document %d: %w", doc.ID, err)
		}
		log.Warn("document rejected", slog.Int("id", doc.ID), slog.String("error", err.Error()))
		summary.Rejected = append(summary.Rejected, Rejection{ID: doc.ID, Reason: err.Error()})
	}
	log.Info("corpus loaded", "indexed", summary.Indexed, "rejected", len(summary.Rejected))
	return summary, nil
}

func add(ix Indexer, doc *ingestion.Document) error {
	if err := validator.ValidateDocument(doc); err != nil {
		return err
	}
	status, err := validator.ResolveStatus(doc.Status)
	if err != nil {
		return err
	}
	return ix.AddDocument(doc.ID, doc.Text, status, doc.Ratings)
}
