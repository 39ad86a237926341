// Package ingestion defines the corpus file schema read by the command line
// tools: the stop words, the documents to index and optional queries.
package ingestion

// Corpus is the top-level YAML document of a corpus file.
type Corpus struct {
	StopWords []string   `yaml:"stopWords"`
	Documents []Document `yaml:"documents"`
	Queries   []string   `yaml:"queries"`
}

// Document is one entry of a corpus. Status holds either a status name
// (ACTUAL, IRRELEVANT, BANNED, REMOVED in any case) or its ordinal; empty
// means ACTUAL.
type Document struct {
	ID      int    `yaml:"id"`
	Text    string `yaml:"text"`
	Status  string `yaml:"status"`
	Ratings []int  `yaml:"ratings"`
}
