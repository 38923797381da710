package hash

import (
	"context"
	"math"
	"testing"

	"pdfrag/internal/embedding"
)

func TestEmbedTokens_Shape(t *testing.T) {
	e := NewEmbedder(64)
	rows, err := e.EmbedTokens(context.Background(), "Quantum tunnelling in semiconductors")
	if err != nil {
		t.Fatalf("EmbedTokens failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, r := range rows {
		if len(r) != 64 {
			t.Errorf("row %d has %d dims, want 64", i, len(r))
		}
	}
}

func TestEmbedTokens_NoTokens(t *testing.T) {
	e := NewEmbedder(16)
	if _, err := e.EmbedTokens(context.Background(), "  ... !!! "); err == nil {
		t.Fatal("expected error for text without tokens")
	}
}

func TestEmbedTokens_StopwordOnlyTextStillEmbeds(t *testing.T) {
	e := NewEmbedder(16)
	rows, err := e.EmbedTokens(context.Background(), "what is it")
	if err != nil {
		t.Fatalf("EmbedTokens failed: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected rows")
	}
}

func TestService_UnitNormAndDeterminism(t *testing.T) {
	svc := embedding.NewService(NewEmbedder(384))
	if err := svc.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	a, err := svc.Embed(context.Background(), "The mitochondria is the powerhouse of the cell.")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, _ := svc.Embed(context.Background(), "The mitochondria is the powerhouse of the cell.")
	if len(a) != 384 {
		t.Fatalf("len = %d, want 384", len(a))
	}
	var norm float64
	for i := range a {
		norm += float64(a[i]) * float64(a[i])
		if a[i] != b[i] {
			t.Fatal("embedding is not deterministic")
		}
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
		t.Errorf("norm = %v, want 1", math.Sqrt(norm))
	}
}
