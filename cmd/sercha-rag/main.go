// Command sercha-rag indexes local documents and answers questions about them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/extractors"
	"github.com/custodia-labs/sercha-rag/internal/extractors/docx"
	"github.com/custodia-labs/sercha-rag/internal/extractors/pdf"
	"github.com/custodia-labs/sercha-rag/internal/extractors/plaintext"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := homeDir()
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	// A missing .env file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}
	settings := services.NewSettingsService(configStore)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Debug("close: %v", err)
			}
		}
	}()

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetLoader(func(ctx context.Context) (*cli.Services, error) {
		svc, c, err := buildPipeline(ctx, home, settings)
		closers = append(closers, c...)
		return svc, err
	})

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// homeDir returns SERCHA_RAG_HOME, or ~/.sercha-rag.
func homeDir() (string, error) {
	if dir := os.Getenv("SERCHA_RAG_HOME"); dir != "" {
		return dir, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(userHome, ".sercha-rag"), nil
}

// buildPipeline wires the stores, AI services and core services from the
// effective configuration. The returned closers must be closed even on error.
func buildPipeline(
	ctx context.Context, home string, settings *services.SettingsService,
) (*cli.Services, []io.Closer, error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg = services.ApplyEnv(cfg, os.LookupEnv)

	var closers []io.Closer

	aiServices, err := ai.Init(cfg)
	if err != nil {
		return nil, closers, err
	}
	closers = append(closers, aiServices)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	store, err := openStore(ctx, home, cfg.Index, aiServices.Embedding)
	if err != nil {
		return nil, closers, err
	}
	closers = append(closers, store)
	logger.Debug("index: %s at %s", store.Backend(), store.Location())

	var counter driven.TokenCounter = tiktoken.Approximate{}
	if c, err := tiktoken.New(cfg.Context.Encoding); err != nil {
		logger.Warn("token counter %q unavailable, using an estimate: %v", cfg.Context.Encoding, err)
	} else {
		counter = c
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return nil, closers, err
	}

	registry := extractors.NewRegistry(cfg.Extraction.Formats, pdf.New(), docx.New(), plaintext.New())

	index := services.NewIndexService(store, aiServices.Embedding)
	retriever := services.NewRetriever(index, cfg.Retrieval)
	assembler := services.NewContextAssembler(
		cfg.Context.HistoryTurns,
		services.WithTokenBudget(counter, cfg.Context.MaxTokens),
	)
	answer := services.NewAnswerService(retriever, assembler, aiServices.LLM, prompts, driven.GenerateOptions{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	ingest := services.NewIngestService(registry, chunker.FromSettings(cfg.Chunking), index, cfg.Extraction)

	return &cli.Services{
		Index:     index,
		Ingest:    ingest,
		Retriever: retriever,
		Answer:    answer,
		Config:    cfg,
	}, closers, nil
}

// openStore opens the configured vector store backend.
func openStore(
	ctx context.Context, home string, cfg domain.IndexSettings, embedder driven.EmbeddingService,
) (driven.VectorStore, error) {
	switch cfg.Backend {
	case domain.IndexBackendMemory:
		return memory.NewVectorStore(domain.MetricCosine), nil
	case domain.IndexBackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: index.postgres_dsn is required for the postgres backend", domain.ErrInvalidInput)
		}
		dims := cfg.Dimensions
		if dims == 0 {
			dims = embedder.Dimensions()
		}
		return postgres.NewVectorStore(ctx, cfg.PostgresDSN, dims)
	default:
		dir := cfg.Path
		if dir == "" {
			dir = filepath.Join(home, "data")
		}
		return sqlite.NewVectorStore(dir)
	}
}
