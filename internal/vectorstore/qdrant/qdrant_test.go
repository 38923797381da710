package qdrant

import (
	"context"
	"errors"
	"testing"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

func TestToPoint(t *testing.T) {
	p := toPoint("6f1c3a52-3f0b-4a57-9d1c-6f7d8e3b2a10", domain.Chunk{Vector: []float32{0.1, 0.2}, Text: "hello"})
	if p.GetId().GetUuid() != "6f1c3a52-3f0b-4a57-9d1c-6f7d8e3b2a10" {
		t.Errorf("id = %v", p.GetId())
	}
	if got := p.GetVectors().GetVector().GetData(); len(got) != 2 || got[1] != 0.2 {
		t.Errorf("vector = %v", got)
	}
	if got := p.GetPayload()[textKey].GetStringValue(); got != "hello" {
		t.Errorf("text payload = %q", got)
	}
}

func TestAppendBeforeOpen(t *testing.T) {
	s, err := New("localhost", 6334, "documents")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()
	err = s.Append(context.Background(), []domain.Chunk{{Vector: []float32{1}, Text: "x"}})
	if !errors.Is(err, vectorstore.ErrNotOpen) {
		t.Errorf("Append error = %v, want ErrNotOpen", err)
	}
}
