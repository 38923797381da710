package main

import (
	"encoding/json"
	"fmt"
	"io"

	"pdfrag/internal/projection"
)

// Text truncation used by the human-readable context listing.
const ContextPreviewLen = 160

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable line.
func outputHuman(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// IngestResponse is the per-file result of the ingest command.
type IngestResponse struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
	Summary string `json:"summary,omitempty"`
}

// AskResponse is the result of the ask command.
type AskResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Context  []string `json:"context,omitempty"`
}

// ProjectionResponse wraps the projection payload with the cache state.
// Payload is omitted until a projection is ready.
type ProjectionResponse struct {
	Ready bool   `json:"ready"`
	State string `json:"state"`
	*projection.Payload
}

// StatusResponse reports engine readiness and collection size.
type StatusResponse struct {
	Ready       bool   `json:"ready"`
	Chunks      int    `json:"chunks"`
	Embedder    string `json:"embedder"`
	Generator   string `json:"generator"`
	VectorStore string `json:"vector_store"`
	Collection  string `json:"collection"`
	Projection  string `json:"projection"`
	Error       string `json:"error,omitempty"`
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
