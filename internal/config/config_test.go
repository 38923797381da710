package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Embedder.Dimensions != DefaultDimensions {
		t.Errorf("Embedder.Dimensions = %d, want %d", cfg.Embedder.Dimensions, DefaultDimensions)
	}
	if cfg.Chunker.ChunkSize != 300 || cfg.Chunker.ChunkOverlap != 75 {
		t.Errorf("chunker = %d/%d, want 300/75", cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("Retrieval.TopK = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Generator.MaxNewTokens != 300 {
		t.Errorf("Generator.MaxNewTokens = %d, want 300", cfg.Generator.MaxNewTokens)
	}
	if cfg.Generator.Temperature != 0.1 {
		t.Errorf("Generator.Temperature = %v, want 0.1", cfg.Generator.Temperature)
	}
	if cfg.VectorStore.Collection != "documents" {
		t.Errorf("VectorStore.Collection = %q, want documents", cfg.VectorStore.Collection)
	}
	if cfg.Embedder.Ollama == nil || cfg.Embedder.Ollama.Model != "all-minilm:l6-v2" {
		t.Errorf("expected default ollama embedder model, got %+v", cfg.Embedder.Ollama)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /var/lib/pdfrag
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
generator:
  type: openai
  prompt_mode: chat
  temperature: 0.3
chunker:
  chunk_size: 500
  chunk_overlap: 100
vector_store:
  type: qdrant
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "/var/lib/pdfrag" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Embedder.OpenAI.Model != "text-embedding-3-large" {
		t.Errorf("Embedder.OpenAI.Model = %q", cfg.Embedder.OpenAI.Model)
	}
	if cfg.Embedder.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("Embedder.OpenAI.APIKeyEnv = %q, want default", cfg.Embedder.OpenAI.APIKeyEnv)
	}
	if cfg.Generator.PromptMode != "chat" || cfg.Generator.Temperature != 0.3 {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	if cfg.Chunker.ChunkSize != 500 || cfg.Chunker.ChunkOverlap != 100 {
		t.Errorf("chunker = %+v", cfg.Chunker)
	}
	if cfg.VectorStore.Qdrant == nil || cfg.VectorStore.Qdrant.Port != 6334 {
		t.Errorf("expected qdrant defaults, got %+v", cfg.VectorStore.Qdrant)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "overlap not smaller than size",
			content: "chunker:\n  chunk_size: 100\n  chunk_overlap: 100\n",
			wantErr: "chunk_overlap",
		},
		{
			name:    "unknown prompt mode",
			content: "generator:\n  prompt_mode: freestyle\n",
			wantErr: "prompt_mode",
		},
		{
			name:    "negative top k",
			content: "retrieval:\n  top_k: -2\n",
			wantErr: "top_k",
		},
		{
			name:    "malformed yaml",
			content: "chunker: [",
			wantErr: "parsing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Retrieval.TopK = 7

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Retrieval.TopK != 7 {
		t.Errorf("Retrieval.TopK = %d, want 7", loaded.Retrieval.TopK)
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	if got := cfg.SQLitePath(); got != filepath.Join("/data", "pdfrag.db") {
		t.Errorf("SQLitePath() = %q", got)
	}

	cfg.VectorStore.SQLite = &SQLiteConfig{Path: "/elsewhere/x.db"}
	if got := cfg.SQLitePath(); got != "/elsewhere/x.db" {
		t.Errorf("SQLitePath() = %q", got)
	}
}
