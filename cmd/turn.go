package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"fdassist/internal/app"
	"fdassist/internal/config"
	"fdassist/internal/document"
)

// runTurn initializes the application, runs one turn, and streams the
// answer to stdout word by word. Cited sources print after the answer.
func runTurn(parent context.Context, question string, uploads []document.Upload) error {
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

	st, err := a.Router.Run(ctx, question, uploads)
	if err != nil {
		return fmt.Errorf("running turn: %w", err)
	}

	streamErr := a.Formatter.Stream(ctx, st.Final, func(text string) error {
		_, printErr := fmt.Print(text)
		return printErr
	})
	fmt.Println()
	if streamErr != nil {
		return fmt.Errorf("streaming answer: %w", streamErr)
	}

	if sources := st.Sources(); len(sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range sources {
			fmt.Printf("  %d. %s - Page %d\n", i+1, s.Document, s.Page)
		}
	}
	return nil
}

// readUploads loads the given paths into memory as uploads.
func readUploads(paths []string) ([]document.Upload, error) {
	uploads := make([]document.Upload, 0, len(paths))
	for _, path := range paths {
		u, err := document.ReadUpload(path)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}
