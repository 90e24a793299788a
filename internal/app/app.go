// Package app provides application initialization and dependency wiring.
//
// App is the container shared by the CLI and the HTTP server. Setup builds
// the full pipeline: configuration, database pool, Genkit, the knowledge
// store, retrieval, the specialist agents, and the router that runs turns.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"fdassist/internal/config"
	"fdassist/internal/document"
	"fdassist/internal/knowledge"
	"fdassist/internal/rag"
	"fdassist/internal/router"
	"fdassist/internal/stream"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool

	// Document pipeline
	Parser    *document.Parser
	Store     *knowledge.Store
	Retriever *rag.Retriever
	Indexer   *rag.Indexer

	// Turn execution
	Tools     []ai.Tool
	Router    *router.Router
	Formatter *stream.Formatter

	poolCleanup func()
}

// Close releases all resources. Safe to call on a partially built App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.Retriever != nil {
		if err := a.Retriever.Close(); err != nil && a.Logger != nil {
			a.Logger.Warn("closing retriever", "error", err)
		}
	}
	if a.poolCleanup != nil {
		a.poolCleanup()
	}
	return nil
}
