package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"fdassist/db"
	"fdassist/internal/agent"
	"fdassist/internal/config"
	"fdassist/internal/document"
	"fdassist/internal/knowledge"
	"fdassist/internal/rag"
	"fdassist/internal/router"
	"fdassist/internal/stream"
	"fdassist/internal/tools"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, poolCleanup, err := provideDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	a.poolCleanup = poolCleanup

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}
	a.Embedder = embedder

	a.Parser = document.NewParser(cfg.MaxUploadBytes, logger.With("component", "parser"))
	a.Store = knowledge.New(pool, embedder, logger.With("component", "knowledge"))

	splitter := document.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	a.Retriever = rag.NewRetriever(a.Store, cfg.RAGTopK, logger.With("component", "retriever"))
	a.Indexer = rag.NewIndexer(a.Store, a.Parser, splitter, logger.With("component", "indexer"))

	if err := provideTools(a); err != nil {
		return nil, err
	}

	rt, err := provideRouter(a)
	if err != nil {
		return nil, err
	}
	a.Router = rt

	a.Formatter = stream.NewFormatter(cfg.WordDelay, stream.WithWhitespaceDelay(cfg.WhitespaceDelay))

	return a, nil
}

// provideDBPool creates a PostgreSQL connection pool and runs migrations.
func provideDBPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, pool.Close, nil
}

// provideGenkit initializes Genkit with the Google AI plugin. The API key
// is read from the GEMINI_API_KEY environment variable by the plugin.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	logger.Info("initialized Genkit", "provider", cfg.Provider, "model", cfg.ModelName)
	return g, nil
}

// provideEmbedder looks up the embedder registered by the Google AI plugin.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
}

// provideTools registers the analysis and retrieval tools with Genkit.
func provideTools(a *App) error {
	kit, err := tools.NewKit(a.Retriever, a.Logger.With("component", "tools"))
	if err != nil {
		return fmt.Errorf("creating tool kit: %w", err)
	}
	registered, err := tools.Register(a.Genkit, kit)
	if err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}
	a.Tools = registered
	a.Logger.Info("tools registered", "count", len(registered))
	return nil
}

// provideRouter builds the specialists and the router that drives them.
func provideRouter(a *App) (*router.Router, error) {
	cfg := a.Config
	logger := a.Logger

	gen, err := agent.NewGenerator(agent.GeneratorConfig{
		Genkit:    a.Genkit,
		ModelName: cfg.ModelName,
		Logger:    logger.With("component", "generator"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	// The descriptor table decides which registered tools each LLM
	// specialist may call.
	registered := make([]ai.ToolRef, len(a.Tools))
	for i, t := range a.Tools {
		registered[i] = t
	}

	processor, err := agent.NewDocumentProcessor(a.Parser, a.Indexer, logger.With("agent", agent.NameDocumentProcessor))
	if err != nil {
		return nil, fmt.Errorf("creating document processor: %w", err)
	}
	cyber, err := agent.NewCybersecurity(gen, a.Retriever, logger.With("agent", agent.NameCybersecurity),
		agent.ToolsFor(agent.NameCybersecurity, registered)...)
	if err != nil {
		return nil, fmt.Errorf("creating cybersecurity specialist: %w", err)
	}
	regulatory, err := agent.NewRegulatory(gen, a.Retriever, logger.With("agent", agent.NameRegulatory),
		agent.ToolsFor(agent.NameRegulatory, registered)...)
	if err != nil {
		return nil, fmt.Errorf("creating regulatory specialist: %w", err)
	}
	auditor := agent.NewAuditor(logger.With("agent", agent.NameAuditor))
	report := agent.NewReportGenerator(logger.With("agent", agent.NameReportGenerator))

	classifier, err := router.NewClassifier(cfg.CybersecurityKeywords, cfg.RegulatoryKeywords)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	rt, err := router.New(router.Config{
		Specialists: []router.Specialist{processor, cyber, regulatory, auditor, report},
		Classifier:  classifier,
		MaxSteps:    cfg.MaxSteps,
		Logger:      logger.With("component", "router"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}
	return rt, nil
}
