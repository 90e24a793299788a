// Package rag provides retrieval-augmented generation support: indexing
// documents into the knowledge store and retrieving relevant passages for
// the specialist agents.
package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fdassist/internal/knowledge"
	"fdassist/internal/log"
)

// ErrClosed is returned when a retriever is used after Close.
var ErrClosed = errors.New("rag: retriever is closed")

// SearchStore defines the storage operations needed by Retriever.
// Interfaces are defined by the consumer, not the provider; knowledge.Store
// satisfies this interface.
type SearchStore interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
	Count(ctx context.Context, corpus string) (int64, error)
}

// Passage is a retrieved chunk with its provenance, ready to be cited
// as "Doc, Page X" in an agent answer.
type Passage struct {
	Source     string
	Page       int
	Content    string
	Similarity float32
}

// Retriever is the shared retrieval handle passed to the specialist agents
// at startup. It is constructed once, prewarmed before serving requests,
// and closed on shutdown.
type Retriever struct {
	store  SearchStore
	topK   int
	logger log.Logger

	mu     sync.RWMutex
	closed bool
}

// NewRetriever creates a retrieval handle over the given store.
// topK is the number of passages returned per query.
func NewRetriever(store SearchStore, topK int, logger log.Logger) *Retriever {
	if topK < 1 {
		topK = 4
	}
	return &Retriever{
		store:  store,
		topK:   topK,
		logger: logger,
	}
}

// Prewarm verifies each corpus is reachable and logs its chunk count.
// Called once during application startup so that a misconfigured database
// fails fast instead of on the first user question.
func (r *Retriever) Prewarm(ctx context.Context) error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrClosed
	}
	r.mu.RUnlock()

	for _, corpus := range []string{
		knowledge.CorpusCybersecurity,
		knowledge.CorpusRegulatory,
		knowledge.CorpusUpload,
	} {
		count, err := r.store.Count(ctx, corpus)
		if err != nil {
			return fmt.Errorf("prewarming corpus %s: %w", corpus, err)
		}
		r.logger.Info("corpus ready", "corpus", corpus, "chunks", count)
	}
	return nil
}

// Retrieve returns the passages most similar to query from the given corpus.
// An empty corpus searches all corpora.
func (r *Retriever) Retrieve(ctx context.Context, corpus, query string) ([]Passage, error) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil, ErrClosed
	}
	r.mu.RUnlock()

	opts := []knowledge.SearchOption{knowledge.WithTopK(r.topK)}
	if corpus != "" {
		opts = append(opts, knowledge.WithCorpus(corpus))
	}

	results, err := r.store.Search(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("retrieving from corpus %s: %w", corpus, err)
	}

	passages := make([]Passage, len(results))
	for i, res := range results {
		passages[i] = Passage{
			Source:     res.Document.Source,
			Page:       res.Document.Page,
			Content:    res.Document.Content,
			Similarity: res.Similarity,
		}
	}

	r.logger.Debug("retrieved passages",
		"corpus", corpus, "query_len", len(query), "count", len(passages))
	return passages, nil
}

// Close releases the handle. Subsequent calls to Retrieve or Prewarm
// return ErrClosed. Closing twice is a no-op.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
