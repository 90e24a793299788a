// Package knowledge stores and searches the reference corpora (FDA
// cybersecurity and regulatory guidance) plus uploaded submission content,
// using PostgreSQL with pgvector for similarity search.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"
)

// ErrEmptyEmbedding indicates the embedder returned no vector.
var ErrEmptyEmbedding = errors.New("empty embedding returned")

// embedOptions pins the embedder output width to the pgvector column.
// gemini-embedding-001 emits 3072 dimensions by default; the documents
// table stores VECTOR(VectorDimension).
func embedOptions() *genai.EmbedContentConfig {
	dim := int32(VectorDimension)
	return &genai.EmbedContentConfig{OutputDimensionality: &dim}
}

// Querier is the subset of pgxpool.Pool the store needs.
// Defined here, by the consumer, so tests can substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages indexed document chunks with vector search.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	db       Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a Store.
func New(db Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, embedder: embedder, logger: logger}
}

// Add embeds and upserts a batch of documents. The batch shares one
// embedding request, so callers should size batches to the embedder's
// input limits (the indexer uses batches of 32).
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	input := make([]*ai.Document, len(docs))
	for i, doc := range docs {
		input[i] = ai.DocumentFromText(doc.Content, nil)
	}

	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{Input: input, Options: embedOptions()})
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	if len(resp.Embeddings) != len(docs) {
		return fmt.Errorf("%w: got %d embeddings for %d documents", ErrEmptyEmbedding, len(resp.Embeddings), len(docs))
	}

	for i, doc := range docs {
		if len(resp.Embeddings[i].Embedding) == 0 {
			return fmt.Errorf("%w: document %q", ErrEmptyEmbedding, doc.Source)
		}
		embedding := pgvector.NewVector(resp.Embeddings[i].Embedding)

		id := doc.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := s.db.Exec(ctx, `
			INSERT INTO documents (id, corpus, source, page, chunk_index, content, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (corpus, source, chunk_index)
			DO UPDATE SET page = EXCLUDED.page, content = EXCLUDED.content,
			              embedding = EXCLUDED.embedding, created_at = EXCLUDED.created_at`,
			id, doc.Corpus, doc.Source, doc.Page, doc.Index, doc.Content, embedding, createdAt,
		)
		if err != nil {
			return fmt.Errorf("upserting chunk %d of %q: %w", doc.Index, doc.Source, err)
		}
	}

	s.logger.Debug("indexed documents", "count", len(docs), "corpus", docs[0].Corpus)
	return nil
}

// Search embeds the query and returns the most similar chunks, ordered by
// cosine similarity. A timeout guards against long-running vector scans.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	resp, err := s.embedder.Embed(queryCtx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(query, nil)},
		Options: embedOptions(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	queryVec := pgvector.NewVector(resp.Embeddings[0].Embedding)

	var (
		rows pgx.Rows
	)
	if cfg.corpus != "" {
		rows, err = s.db.Query(queryCtx, `
			SELECT id, corpus, source, page, chunk_index, content, created_at,
			       1 - (embedding <=> $1) AS similarity
			FROM documents
			WHERE corpus = $2
			ORDER BY embedding <=> $1
			LIMIT $3`,
			queryVec, cfg.corpus, cfg.topK,
		)
	} else {
		rows, err = s.db.Query(queryCtx, `
			SELECT id, corpus, source, page, chunk_index, content, created_at,
			       1 - (embedding <=> $1) AS similarity
			FROM documents
			ORDER BY embedding <=> $1
			LIMIT $2`,
			queryVec, cfg.topK,
		)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.Document.ID, &r.Document.Corpus, &r.Document.Source,
			&r.Document.Page, &r.Document.Index, &r.Document.Content,
			&r.Document.CreatedAt, &r.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return results, nil
}

// Count returns the number of chunks in a corpus, or all chunks when
// corpus is empty.
func (s *Store) Count(ctx context.Context, corpus string) (int64, error) {
	var count int64
	var err error
	if corpus != "" {
		err = s.db.QueryRow(ctx, `SELECT count(*) FROM documents WHERE corpus = $1`, corpus).Scan(&count)
	} else {
		err = s.db.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// DeleteSource removes every chunk of one source document from a corpus.
func (s *Store) DeleteSource(ctx context.Context, corpus, source string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM documents WHERE corpus = $1 AND source = $2`, corpus, source); err != nil {
		return fmt.Errorf("deleting %q from %s: %w", source, corpus, err)
	}
	s.logger.Debug("deleted source", "corpus", corpus, "source", source)
	return nil
}
