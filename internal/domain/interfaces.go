package domain

import "context"

// Chunk is a span of document text stored alongside its embedding vector.
type Chunk struct {
	Vector []float32
	Text   string
}

// GenerateParams bounds a single text generation call.
type GenerateParams struct {
	MaxNewTokens int
	Temperature  float64
}

// Embedder converts free text into a fixed-length, unit-norm vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Ready() bool
}

// Generator produces a completion for a prompt. The returned text includes
// the echoed prompt; callers extract the answer themselves.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
	Ready() bool
}

// VectorStore persists chunk records and supports nearest-neighbour search.
type VectorStore interface {
	OpenOrCreate(ctx context.Context, dims int) error
	Append(ctx context.Context, chunks []Chunk) error
	ScanAll(ctx context.Context) ([]Chunk, error)
	Nearest(ctx context.Context, query []float32, k int) ([]Chunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Chunker splits document text into retrieval-sized pieces.
type Chunker interface {
	Split(text string) []string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// IngestResult is returned at the ingestion boundary.
type IngestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
	Summary string `json:"summary,omitempty"`
}
