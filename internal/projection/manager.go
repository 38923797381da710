// Package projection keeps a 3D principal-component projection of the vector
// index, recomputed in the background.
package projection

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pdfrag/internal/domain"
	"pdfrag/internal/observability"
)

// Payload holds one point per valid record. All slices have equal length.
type Payload struct {
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	Z    []float64 `json:"z"`
	Text []string  `json:"text"`
}

// Len returns the number of projected points.
func (p Payload) Len() int { return len(p.Text) }

// State describes the cache.
type State int

const (
	StateEmpty State = iota
	StateComputing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

// Source supplies every stored record.
type Source interface {
	ScanAll(ctx context.Context) ([]domain.Chunk, error)
}

// Manager owns the projection cache. Recomputations run concurrently and the
// last one to finish replaces the cached payload.
type Manager struct {
	src      Source
	dims     int
	cache    atomic.Pointer[Payload]
	inflight atomic.Int32
	wg       sync.WaitGroup
}

// NewManager creates a manager reading records of width dims from src.
func NewManager(src Source, dims int) *Manager {
	return &Manager{src: src, dims: dims}
}

// TriggerRecompute starts a background computation and returns immediately.
func (m *Manager) TriggerRecompute() {
	m.inflight.Add(1)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.inflight.Add(-1)
		m.recompute(context.Background())
	}()
}

// Get returns the cached payload, or false if no computation has finished.
func (m *Manager) Get() (Payload, bool) {
	p := m.cache.Load()
	if p == nil {
		return Payload{}, false
	}
	return *p, true
}

// State reports whether a computation is running or a payload is available.
func (m *Manager) State() State {
	if m.inflight.Load() > 0 {
		return StateComputing
	}
	if m.cache.Load() != nil {
		return StateReady
	}
	return StateEmpty
}

// Wait blocks until every started computation has finished.
func (m *Manager) Wait() { m.wg.Wait() }

func (m *Manager) recompute(ctx context.Context) {
	ctx, span := observability.Start(ctx, "projection.recompute")
	defer span.End()
	start := time.Now()

	chunks, err := m.src.ScanAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		slog.Error("projection scan failed", "error", err)
		return
	}
	p, err := Project(chunks, m.dims)
	if err != nil {
		observability.RecordError(span, err)
		slog.Error("projection failed", "records", len(chunks), "error", err)
		return
	}
	m.cache.Store(&p)

	span.SetAttributes(
		attribute.Int("projection.records", len(chunks)),
		attribute.Int("projection.points", p.Len()),
	)
	slog.Info("projection updated", "records", len(chunks), "points", p.Len(), "elapsed", time.Since(start))
}
