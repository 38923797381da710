// Package service wires the ingestion, answer and projection pipelines
// around shared embedding, generation and storage handles.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"pdfrag/internal/domain"
	"pdfrag/internal/generation"
	"pdfrag/internal/pdf"
	"pdfrag/internal/projection"
)

// User-facing messages returned at the engine boundary.
const (
	MsgEmptyQuestion  = "Please provide a question."
	MsgNotInitialized = "The RAG engine has not been initialized correctly."
	MsgNoInformation  = "Sorry, I don't have that information in my documents."
	MsgAnswerFailed   = "An error occurred while processing your question."
	MsgInvalidPath    = "Invalid file path."
)

// ErrNotInitialized is returned by operations that need every handle ready.
var ErrNotInitialized = errors.New("engine not initialized")

// Options tunes the pipelines.
type Options struct {
	Dimensions          int
	TopK                int
	PromptMode          generation.PromptMode
	Params              domain.GenerateParams
	EmbedConcurrency    int
	SummaryMaxSentences int
}

// Deps are the collaborators shared by the pipelines. Summarizer is optional.
type Deps struct {
	Embedder   domain.Embedder
	Generator  domain.Generator
	Store      domain.VectorStore
	Chunker    domain.Chunker
	Summarizer domain.Summarizer
}

type initializer interface {
	Init(ctx context.Context) error
}

// Engine is the RAG engine.
type Engine struct {
	embedder   domain.Embedder
	generator  domain.Generator
	store      domain.VectorStore
	chunker    domain.Chunker
	summarizer domain.Summarizer
	opts       Options

	projections *projection.Manager
	storeReady  atomic.Bool
	ingestMu    sync.Mutex
	extract     func(path string) (string, error)
}

// New creates an engine. Call Init before serving requests.
func New(deps Deps, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.EmbedConcurrency <= 0 {
		opts.EmbedConcurrency = 4
	}
	if opts.SummaryMaxSentences <= 0 {
		opts.SummaryMaxSentences = 5
	}
	if opts.PromptMode == "" {
		opts.PromptMode = generation.ModeCompletion
	}
	opts.Params = generation.WithDefaults(opts.Params)
	return &Engine{
		embedder:    deps.Embedder,
		generator:   deps.Generator,
		store:       deps.Store,
		chunker:     deps.Chunker,
		summarizer:  deps.Summarizer,
		opts:        opts,
		projections: projection.NewManager(deps.Store, opts.Dimensions),
		extract:     pdf.ExtractText,
	}
}

// Init readies the models and opens the collection, then starts the first
// projection. Failures are returned together; the engine stays usable and
// answers with MsgNotInitialized until every handle is ready.
func (e *Engine) Init(ctx context.Context) error {
	var errs []error
	for _, h := range []any{e.embedder, e.generator} {
		in, ok := h.(initializer)
		if !ok {
			continue
		}
		if err := in.Init(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.store.OpenOrCreate(ctx, e.opts.Dimensions); err != nil {
		errs = append(errs, fmt.Errorf("opening collection: %w", err))
	} else {
		e.storeReady.Store(true)
		e.projections.TriggerRecompute()
	}
	err := errors.Join(errs...)
	if err != nil {
		slog.Warn("engine started degraded", "error", err)
	} else {
		slog.Info("engine ready", "dimensions", e.opts.Dimensions, "top_k", e.opts.TopK, "prompt_mode", e.opts.PromptMode)
	}
	return err
}

// Ready reports whether the embedder, generator and store are all usable.
func (e *Engine) Ready() bool {
	return e.embedder.Ready() && e.generator.Ready() && e.storeReady.Load()
}

// Projection returns the cached projection, or false while none is ready.
func (e *Engine) Projection() (projection.Payload, bool) {
	return e.projections.Get()
}

// ProjectionState reports the projection cache state.
func (e *Engine) ProjectionState() projection.State {
	return e.projections.State()
}

// WaitProjections blocks until running projection computations finish.
func (e *Engine) WaitProjections() {
	e.projections.Wait()
}

// Count returns the number of stored chunks.
func (e *Engine) Count(ctx context.Context) (int, error) {
	if !e.storeReady.Load() {
		return 0, ErrNotInitialized
	}
	return e.store.Count(ctx)
}

// Close waits for background work and releases the store.
func (e *Engine) Close() error {
	e.projections.Wait()
	return e.store.Close()
}
