package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pdfrag/internal/chunker"
	"pdfrag/internal/config"
	"pdfrag/internal/domain"
	"pdfrag/internal/embedding"
	"pdfrag/internal/embedding/hash"
	embollama "pdfrag/internal/embedding/ollama"
	embopenai "pdfrag/internal/embedding/openai"
	"pdfrag/internal/generation"
	genollama "pdfrag/internal/generation/ollama"
	genopenai "pdfrag/internal/generation/openai"
	"pdfrag/internal/observability"
	"pdfrag/internal/openaiclient"
	"pdfrag/internal/service"
	"pdfrag/internal/summarizer"
	"pdfrag/internal/vectorstore/memory"
	"pdfrag/internal/vectorstore/qdrant"
	"pdfrag/internal/vectorstore/sqlite"
)

// app holds the assembled engine and the process-wide tracer.
type app struct {
	engine    *service.Engine
	embedder  *embedding.Service
	generator *generation.Service
	tracer    *observability.TracerProvider
	initErr   error
}

// buildApp assembles every component named by cfg and initializes the engine.
// Construction errors are fatal; an initialization error leaves a degraded
// engine that answers with fixed messages and is reported in initErr.
func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	tracer, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "pdfrag",
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	mode, err := generation.ParseMode(cfg.Generator.PromptMode)
	if err != nil {
		return nil, err
	}
	emb, err := newEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(cfg.Generator)
	if err != nil {
		return nil, err
	}
	ch, err := newChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	sum, err := newSummarizer(cfg.Summarizer)
	if err != nil {
		return nil, err
	}
	st, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	engine := service.New(service.Deps{
		Embedder:   emb,
		Generator:  gen,
		Store:      st,
		Chunker:    ch,
		Summarizer: sum,
	}, service.Options{
		Dimensions: cfg.Embedder.Dimensions,
		TopK:       cfg.Retrieval.TopK,
		PromptMode: mode,
		Params: domain.GenerateParams{
			MaxNewTokens: cfg.Generator.MaxNewTokens,
			Temperature:  cfg.Generator.Temperature,
		},
		EmbedConcurrency:    cfg.Embedder.Concurrency,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
	})

	a := &app{engine: engine, embedder: emb, generator: gen, tracer: tracer}
	a.initErr = engine.Init(ctx)
	return a, nil
}

// Close waits for background projections, closes the store and flushes traces.
func (a *app) Close() error {
	err := a.engine.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(err, a.tracer.Shutdown(ctx))
}

func newEmbedder(cfg config.EmbedderConfig) (*embedding.Service, error) {
	var backend embedding.Backend
	switch cfg.Type {
	case "ollama":
		if cfg.Ollama == nil {
			return nil, errors.New("ollama embedder config missing")
		}
		backend = embollama.NewProvider(
			embollama.WithBaseURL(cfg.Ollama.BaseURL),
			embollama.WithModel(cfg.Ollama.Model),
			embollama.WithDimensions(cfg.Dimensions),
			embollama.WithTimeout(seconds(cfg.Ollama.TimeoutSecs)),
		)
	case "openai":
		client, err := newOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		backend = embopenai.NewClient(client, cfg.OpenAI.Model, cfg.Dimensions)
	case "hash":
		backend = hash.NewEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
	return embedding.NewService(backend), nil
}

func newGenerator(cfg config.GeneratorConfig) (*generation.Service, error) {
	var backend generation.Backend
	switch cfg.Type {
	case "ollama":
		if cfg.Ollama == nil {
			return nil, errors.New("ollama generator config missing")
		}
		backend = genollama.NewProvider(
			genollama.WithBaseURL(cfg.Ollama.BaseURL),
			genollama.WithModel(cfg.Ollama.Model),
			genollama.WithTimeout(seconds(cfg.Ollama.TimeoutSecs)),
		)
	case "openai":
		client, err := newOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("openai generator: %w", err)
		}
		backend = genopenai.NewClient(client, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
	return generation.NewService(backend), nil
}

func newOpenAIClient(cfg *config.OpenAIConfig) (*openaiclient.Client, error) {
	if cfg == nil {
		return nil, errors.New("openai config missing")
	}
	return openaiclient.New(openaiclient.Config{
		BaseURL:           cfg.BaseURL,
		APIKeyEnv:         cfg.APIKeyEnv,
		Timeout:           seconds(cfg.TimeoutSecs),
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
}

func newChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "character":
		return chunker.NewCharacterChunker(cfg.ChunkSize, cfg.ChunkOverlap), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func newSummarizer(cfg config.SummarizerConfig) (domain.Summarizer, error) {
	switch cfg.Type {
	case "frequency":
		return summarizer.NewFrequencySummarizer(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}

func newStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case "sqlite":
		path := cfg.SQLitePath()
		slog.Debug("opening sqlite store", "path", path, "collection", vs.Collection)
		return sqlite.Open(path, vs.Collection)
	case "qdrant":
		if vs.Qdrant == nil {
			return nil, errors.New("qdrant config missing")
		}
		return qdrant.New(vs.Qdrant.Host, vs.Qdrant.Port, vs.Collection)
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vs.Type)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
