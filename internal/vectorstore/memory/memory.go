// Package memory is an in-process vector store using brute-force cosine
// similarity. Records live only as long as the process.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

// unscored ranks vectors with zero magnitude after every real similarity.
const unscored = -2.0

// Storage is a simple in-memory vector store.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) OpenOrCreate(_ context.Context, dims int) error {
	if dims <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dims {
		return fmt.Errorf("%w: have %d, requested %d", vectorstore.ErrDimensionMismatch, s.dimension, dims)
	}
	s.dimension = dims
	return nil
}

func (s *Storage) Append(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return vectorstore.ErrNotOpen
	}
	for _, c := range chunks {
		if err := vectorstore.Validate(c, s.dimension); err != nil {
			return err
		}
		v := make([]float32, len(c.Vector))
		copy(v, c.Vector)
		s.chunks = append(s.chunks, domain.Chunk{Vector: v, Text: c.Text})
	}
	return nil
}

func (s *Storage) ScanAll(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Nearest returns up to k chunks ordered by descending cosine similarity.
func (s *Storage) Nearest(_ context.Context, query []float32, k int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.chunks) == 0 {
		return []domain.Chunk{}, nil
	}
	scores := make([]float64, len(s.chunks))
	for i := range s.chunks {
		sim, ok := vectorstore.CosineSimilarity(s.chunks[i].Vector, query)
		if !ok {
			sim = unscored
		}
		scores[i] = sim
	}
	idxs := argsortDesc(scores)
	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]domain.Chunk, 0, k)
	for _, j := range idxs[:k] {
		results = append(results, s.chunks[j])
	}
	return results, nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *Storage) Close() error { return nil }

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
