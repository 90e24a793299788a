package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// VectorDimension is the embedding width stored in pgvector.
// gemini-embedding-001 is truncated to this via OutputDimensionality;
// the documents table schema must match.
const VectorDimension = 768

// Corpus identifiers for the two reference collections and uploaded
// submission content.
const (
	CorpusCybersecurity = "cybersecurity"
	CorpusRegulatory    = "regulatory"
	CorpusUpload        = "upload"
)

// Document is one indexed chunk of a source document.
type Document struct {
	ID        uuid.UUID
	Corpus    string
	Source    string // originating document name
	Page      int    // 1-based page, 0 if unknown
	Index     int    // chunk position within the source
	Content   string
	CreatedAt time.Time
}

// Result is a search hit with its cosine similarity to the query.
type Result struct {
	Document   Document
	Similarity float32
}

// SearchOption configures Search using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	corpus  string
	timeout time.Duration
}

// WithTopK sets the maximum number of results. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		c.topK = k
	}
}

// WithCorpus restricts the search to a single corpus.
func WithCorpus(corpus string) SearchOption {
	return func(c *searchConfig) {
		c.corpus = corpus
	}
}

// WithTimeout overrides the default 10s search timeout.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		c.timeout = d
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
