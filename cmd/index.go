package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fdassist/internal/app"
	"fdassist/internal/config"
	"fdassist/internal/knowledge"
	"fdassist/internal/rag"
)

var indexCorpus string

var validCorpora = []string{
	knowledge.CorpusCybersecurity,
	knowledge.CorpusRegulatory,
	knowledge.CorpusUpload,
}

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index guidance documents into a corpus",
	Long: `Parses the given files or directories and stores their chunks with
embeddings in the chosen corpus. Used to seed the cybersecurity and
regulatory knowledge bases from local FDA guidance documents.

Re-indexing a document replaces its previous chunks.

Example:
  fdassist index --corpus cybersecurity ./guidance/cyber/
  fdassist index --corpus regulatory 510k-program-guidance.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context(), args)
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexCorpus, "corpus", knowledge.CorpusRegulatory,
		"target corpus: cybersecurity, regulatory, or upload")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(parent context.Context, paths []string) error {
	if !slices.Contains(validCorpora, indexCorpus) {
		return fmt.Errorf("unknown corpus %q (valid: %v)", indexCorpus, validCorpora)
	}

	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	var results []*rag.IndexResult
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if info.IsDir() {
			dirResults, err := a.Indexer.IndexDirectory(ctx, indexCorpus, path)
			if err != nil {
				return fmt.Errorf("indexing directory %s: %w", path, err)
			}
			results = append(results, dirResults...)
			continue
		}
		res, err := a.Indexer.IndexFile(ctx, indexCorpus, path)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		results = append(results, res)
	}

	totalChunks := 0
	for _, res := range results {
		fmt.Printf("indexed %s: %d chunks, %d pages, %d words (%s)\n",
			res.Source, res.Chunks, res.Pages, res.Words, res.Duration.Round(time.Millisecond))
		totalChunks += res.Chunks
	}
	fmt.Printf("done: %d documents, %d chunks in corpus %q\n", len(results), totalChunks, indexCorpus)
	return nil
}
