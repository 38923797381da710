// Package embedding turns text into unit-norm vectors for retrieval.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"pdfrag/internal/observability"
)

// ErrUnavailable is returned while the embedding model is not initialized.
var ErrUnavailable = errors.New("embedding model unavailable")

// Backend produces token-level vectors for a text. Backends that already pool
// return a single row.
type Backend interface {
	EmbedTokens(ctx context.Context, text string) ([][]float32, error)
	ModelName() string
	Dimensions() int
}

// Initializer is implemented by backends that need a readiness check before
// the first embedding.
type Initializer interface {
	Init(ctx context.Context) error
}

// Service wraps a Backend with readiness gating, mean pooling and L2
// normalization. It is safe for concurrent use.
type Service struct {
	backend Backend
	ready   atomic.Bool
}

// NewService creates a Service. It reports ErrUnavailable until Init succeeds.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Init probes the backend and marks the service ready.
func (s *Service) Init(ctx context.Context) error {
	if in, ok := s.backend.(Initializer); ok {
		if err := in.Init(ctx); err != nil {
			return fmt.Errorf("initializing %s: %w", s.backend.ModelName(), err)
		}
	}
	s.ready.Store(true)
	slog.Info("embedding model ready", "model", s.backend.ModelName(), "dimensions", s.backend.Dimensions())
	return nil
}

// Ready reports whether Init has completed.
func (s *Service) Ready() bool { return s.ready.Load() }

// Dimensions returns the length of every vector produced by Embed.
func (s *Service) Dimensions() int { return s.backend.Dimensions() }

// ModelName returns the backend model identifier.
func (s *Service) ModelName() string { return s.backend.ModelName() }

// Embed returns the mean-pooled, L2-normalized embedding of text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if !s.Ready() {
		return nil, ErrUnavailable
	}
	ctx, span := observability.StartModelSpan(ctx, "embed", s.backend.ModelName())
	defer span.End()
	tokens, err := s.backend.EmbedTokens(ctx, text)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	vec, err := MeanPool(tokens)
	if err != nil {
		return nil, err
	}
	if len(vec) != s.backend.Dimensions() {
		return nil, fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(vec), s.backend.Dimensions())
	}
	Normalize(vec)
	return vec, nil
}

// MeanPool averages token vectors component-wise. All rows must share a
// length and contain only finite values.
func MeanPool(tokens [][]float32) ([]float32, error) {
	if len(tokens) == 0 {
		return nil, errors.New("no token embeddings to pool")
	}
	dim := len(tokens[0])
	if dim == 0 {
		return nil, errors.New("empty token embedding")
	}
	sum := make([]float64, dim)
	for i, row := range tokens {
		if len(row) != dim {
			return nil, fmt.Errorf("token %d has %d dimensions, want %d", i, len(row), dim)
		}
		for j, v := range row {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("token %d has a non-finite component at %d", i, j)
			}
			sum[j] += f
		}
	}
	out := make([]float32, dim)
	n := float64(len(tokens))
	for j := range sum {
		out[j] = float32(sum[j] / n)
	}
	return out, nil
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
