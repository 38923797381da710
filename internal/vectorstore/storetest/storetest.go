// Package storetest runs behavioural checks shared by every vector store
// backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

// Store is the contract under test.
type Store interface {
	OpenOrCreate(ctx context.Context, dims int) error
	Append(ctx context.Context, chunks []domain.Chunk) error
	ScanAll(ctx context.Context) ([]domain.Chunk, error)
	Nearest(ctx context.Context, query []float32, k int) ([]domain.Chunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Unit returns a dims-wide vector with a one at position i.
func Unit(dims, i int) []float32 {
	v := make([]float32, dims)
	v[i%dims] = 1
	return v
}

// Run executes the suite. newStore must return a fresh, unopened store.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("NearestOnEmptyCollection", func(t *testing.T) {
		s := open(t, newStore, 4)
		got, err := s.Nearest(context.Background(), Unit(4, 0), 3)
		if err != nil {
			t.Fatalf("Nearest failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Nearest on empty collection = %v, want none", got)
		}
	})

	t.Run("OpenOrCreateIsIdempotent", func(t *testing.T) {
		s := open(t, newStore, 4)
		ctx := context.Background()
		if err := s.Append(ctx, []domain.Chunk{{Vector: Unit(4, 1), Text: "one"}}); err != nil {
			t.Fatal(err)
		}
		if err := s.OpenOrCreate(ctx, 4); err != nil {
			t.Fatalf("second OpenOrCreate failed: %v", err)
		}
		if n, _ := s.Count(ctx); n != 1 {
			t.Errorf("Count = %d, want 1", n)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		s := open(t, newStore, 4)
		if err := s.OpenOrCreate(context.Background(), 8); !errors.Is(err, vectorstore.ErrDimensionMismatch) {
			t.Errorf("OpenOrCreate error = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("AppendAndScanAllPreservesOrder", func(t *testing.T) {
		s := open(t, newStore, 4)
		ctx := context.Background()
		for i, text := range []string{"a", "b", "c"} {
			if err := s.Append(ctx, []domain.Chunk{{Vector: Unit(4, i), Text: text}}); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		all, err := s.ScanAll(ctx)
		if err != nil {
			t.Fatalf("ScanAll failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("ScanAll returned %d records, want 3", len(all))
		}
		for i, want := range []string{"a", "b", "c"} {
			if all[i].Text != want {
				t.Errorf("record %d text = %q, want %q", i, all[i].Text, want)
			}
			if len(all[i].Vector) != 4 || all[i].Vector[i] != 1 {
				t.Errorf("record %d vector = %v", i, all[i].Vector)
			}
		}
	})

	t.Run("AppendRejectsInvalidRecords", func(t *testing.T) {
		s := open(t, newStore, 4)
		ctx := context.Background()
		err := s.Append(ctx, []domain.Chunk{{Vector: Unit(3, 0), Text: "short"}})
		if !errors.Is(err, vectorstore.ErrInvalidRecord) {
			t.Errorf("Append error = %v, want ErrInvalidRecord", err)
		}
		if n, _ := s.Count(ctx); n != 0 {
			t.Errorf("Count = %d after rejected append, want 0", n)
		}
	})

	t.Run("NearestRanksByCosine", func(t *testing.T) {
		s := open(t, newStore, 4)
		ctx := context.Background()
		chunks := []domain.Chunk{
			{Vector: []float32{1, 0, 0, 0}, Text: "x"},
			{Vector: []float32{0.6, 0.8, 0, 0}, Text: "xy"},
			{Vector: []float32{0, 1, 0, 0}, Text: "y"},
			{Vector: []float32{0, 0, 0, 1}, Text: "w"},
		}
		for _, c := range chunks {
			if err := s.Append(ctx, []domain.Chunk{c}); err != nil {
				t.Fatal(err)
			}
		}
		got, err := s.Nearest(ctx, []float32{0, 2, 0, 0}, 3)
		if err != nil {
			t.Fatalf("Nearest failed: %v", err)
		}
		want := []string{"y", "xy", "x"}
		if len(got) != len(want) {
			t.Fatalf("Nearest returned %d records, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].Text != want[i] {
				t.Errorf("rank %d = %q, want %q", i, got[i].Text, want[i])
			}
		}

		all, _ := s.Nearest(ctx, []float32{1, 0, 0, 0}, 10)
		if len(all) != 4 {
			t.Errorf("Nearest with k > count returned %d, want 4", len(all))
		}
	})
}

func open(t *testing.T, newStore func(t *testing.T) Store, dims int) Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })
	if err := s.OpenOrCreate(context.Background(), dims); err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}
	return s
}
