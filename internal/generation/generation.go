// Package generation produces text completions for retrieval prompts.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"pdfrag/internal/domain"
	"pdfrag/internal/observability"
)

// ErrUnavailable is returned while the generation model is not initialized.
var ErrUnavailable = errors.New("generation model unavailable")

const (
	DefaultMaxNewTokens = 300
	DefaultTemperature  = 0.1
)

// Backend produces raw model output. Implementations echo the prompt at the
// start of their output when the model API allows it.
type Backend interface {
	Generate(ctx context.Context, prompt string, params domain.GenerateParams) (string, error)
	ModelName() string
}

// Initializer is implemented by backends that need a readiness check.
type Initializer interface {
	Init(ctx context.Context) error
}

// Service gates a Backend behind Init and fills in default parameters.
type Service struct {
	backend Backend
	ready   atomic.Bool
}

// NewService creates a Service around backend.
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
	slog.Info("generation model ready", "model", s.backend.ModelName())
	return nil
}

// Ready reports whether Init has completed.
func (s *Service) Ready() bool { return s.ready.Load() }

// ModelName returns the backend model identifier.
func (s *Service) ModelName() string { return s.backend.ModelName() }

// Generate returns the model output for prompt, prompt included.
func (s *Service) Generate(ctx context.Context, prompt string, params domain.GenerateParams) (string, error) {
	if !s.Ready() {
		return "", ErrUnavailable
	}
	ctx, span := observability.StartModelSpan(ctx, "generate", s.backend.ModelName())
	defer span.End()
	out, err := s.backend.Generate(ctx, prompt, WithDefaults(params))
	observability.RecordError(span, err)
	return out, err
}

// WithDefaults replaces unset parameters with the package defaults.
func WithDefaults(p domain.GenerateParams) domain.GenerateParams {
	if p.MaxNewTokens <= 0 {
		p.MaxNewTokens = DefaultMaxNewTokens
	}
	if p.Temperature <= 0 {
		p.Temperature = DefaultTemperature
	}
	return p
}
