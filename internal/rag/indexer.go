package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fdassist/internal/document"
	"fdassist/internal/knowledge"
	"fdassist/internal/log"
)

// IndexerStore defines the storage operations needed by Indexer.
type IndexerStore interface {
	Add(ctx context.Context, docs []knowledge.Document) error
	DeleteSource(ctx context.Context, corpus, source string) error
}

// IndexResult summarizes an indexing operation.
type IndexResult struct {
	Source   string
	Chunks   int
	Pages    int
	Words    int
	Duration time.Duration
}

// Indexer runs the ingest pipeline: parse an upload, split it into chunks,
// and write the chunks with embeddings into a corpus.
type Indexer struct {
	store    IndexerStore
	parser   *document.Parser
	splitter *document.Splitter
	logger   log.Logger
}

// NewIndexer creates an indexer over the given store and document pipeline.
func NewIndexer(store IndexerStore, parser *document.Parser, splitter *document.Splitter, logger log.Logger) *Indexer {
	return &Indexer{
		store:    store,
		parser:   parser,
		splitter: splitter,
		logger:   logger,
	}
}

// IndexUpload parses one upload and stores its chunks in the given corpus.
// Re-indexing a source replaces its previous chunks.
func (idx *Indexer) IndexUpload(ctx context.Context, corpus string, upload document.Upload) (*IndexResult, error) {
	parsed, err := idx.parser.Parse(upload)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", upload.Name, err)
	}
	return idx.IndexParsed(ctx, corpus, parsed)
}

// IndexParsed stores the chunks of an already parsed document in the given
// corpus. Re-indexing a source replaces its previous chunks.
func (idx *Indexer) IndexParsed(ctx context.Context, corpus string, parsed *document.Parsed) (*IndexResult, error) {
	start := time.Now()

	chunks := idx.splitter.Split(parsed)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", parsed.Name)
	}

	// Drop stale chunks first so a shrinking document leaves no orphans.
	if err := idx.store.DeleteSource(ctx, corpus, parsed.Name); err != nil {
		return nil, fmt.Errorf("replacing source %s: %w", parsed.Name, err)
	}

	docs := make([]knowledge.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = knowledge.Document{
			Corpus:  corpus,
			Source:  c.Source,
			Page:    c.Page,
			Index:   c.Index,
			Content: c.Text,
		}
	}
	if err := idx.store.Add(ctx, docs); err != nil {
		return nil, fmt.Errorf("storing chunks for %s: %w", parsed.Name, err)
	}

	result := &IndexResult{
		Source:   parsed.Name,
		Chunks:   len(chunks),
		Pages:    len(parsed.Pages),
		Words:    parsed.Words,
		Duration: time.Since(start),
	}
	idx.logger.Info("indexed document",
		"corpus", corpus, "source", result.Source,
		"chunks", result.Chunks, "pages", result.Pages)
	return result, nil
}

// IndexUploads expands archives and indexes every contained document.
// A member that fails to parse is skipped; indexing continues with the rest.
func (idx *Indexer) IndexUploads(ctx context.Context, corpus string, uploads []document.Upload) ([]*IndexResult, error) {
	var results []*IndexResult
	for _, u := range uploads {
		members, err := idx.parser.Expand(u)
		if err != nil {
			return results, fmt.Errorf("expanding %s: %w", u.Name, err)
		}
		for _, m := range members {
			res, err := idx.IndexUpload(ctx, corpus, m)
			if err != nil {
				idx.logger.Warn("skipping document", "source", m.Name, "error", err)
				continue
			}
			results = append(results, res)
		}
	}
	return results, nil
}

// IndexFile reads a file from disk and indexes it into the given corpus.
// Used by the CLI to seed the regulatory and cybersecurity corpora from
// local guidance documents.
func (idx *Indexer) IndexFile(ctx context.Context, corpus, path string) (*IndexResult, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return idx.IndexUpload(ctx, corpus, document.Upload{
		Name: filepath.Base(path),
		Data: data,
	})
}

// IndexDirectory indexes every regular file in a directory, non-recursively.
// Unsupported file types are skipped.
func (idx *Indexer) IndexDirectory(ctx context.Context, corpus, dir string) ([]*IndexResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var results []*IndexResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		res, err := idx.IndexFile(ctx, corpus, filepath.Join(dir, entry.Name()))
		if err != nil {
			idx.logger.Warn("skipping file", "file", entry.Name(), "error", err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
