// Package app wires the assistant's components together: configuration,
// Genkit, the Postgres pool, corpus and contact stores, and the request
// router. Commands build an App once and pull what they need from it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supervisionhq/jarvis/internal/assistant"
	"github.com/supervisionhq/jarvis/internal/config"
	"github.com/supervisionhq/jarvis/internal/contacts"
	"github.com/supervisionhq/jarvis/internal/corpus"
	"github.com/supervisionhq/jarvis/internal/database"
	"github.com/supervisionhq/jarvis/internal/ingest"
)

// App holds the assembled components for one process.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool

	Corpus    *corpus.Store
	Assembler *corpus.Assembler
	Contacts  *contacts.Store

	Generator  assistant.Generator
	Resolver   *contacts.Resolver
	Summarizer *contacts.Summarizer
	Messenger  assistant.Messenger
	Assistant  *assistant.Assistant
	Indexer    *ingest.Indexer
}

// New builds the full component graph. It validates the config, initializes
// Genkit with the Google AI plugin, opens (and migrates) the database, and
// wires the router. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := cfg.ValidateAI(); err != nil {
		return nil, fmt.Errorf("validating AI config: %w", err)
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not available", cfg.EmbedderModel)
	}

	pool, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	corpusStore := corpus.NewStore(pool, embedder, logger)
	assembler := corpus.NewAssembler(corpusStore, int32(cfg.ExcerptWindow), logger)
	contactStore := contacts.NewStore(pool, logger)

	gen := assistant.NewModelGenerator(g, cfg.FullModelName(), cfg.Temperature, cfg.MaxTokens)
	resolver := contacts.NewResolver(gen, contactStore, logger)
	summarizer := contacts.NewSummarizer(gen)
	messenger := assistant.NewTextbeltClient(cfg.Textbelt.URL, cfg.Textbelt.Key, cfg.Textbelt.Enabled, logger)

	router, err := assistant.New(assistant.Config{
		Generator: gen,
		Store:     corpusStore,
		Assembler: assembler,
		Resolver:  resolver,
		Messenger: messenger,
		OwnerName: cfg.OwnerName,
		TopK:      cfg.RetrievalTopK,
		Logger:    logger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building assistant: %w", err)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Genkit:     g,
		Embedder:   embedder,
		Pool:       pool,
		Corpus:     corpusStore,
		Assembler:  assembler,
		Contacts:   contactStore,
		Generator:  gen,
		Resolver:   resolver,
		Summarizer: summarizer,
		Messenger:  messenger,
		Assistant:  router,
		Indexer:    ingest.NewIndexer(corpusStore, contactStore, summarizer, logger),
	}, nil
}

// Close releases the App's resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
