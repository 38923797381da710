package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfrag/internal/domain"
)

func TestGenerate_EchoesPromptAndSendsOptions(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathGenerate {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: " Paris.", Done: true})
	}))
	defer srv.Close()

	p := NewProvider(WithBaseURL(srv.URL), WithModel("tinyllama"))
	out, err := p.Generate(context.Background(), "Q:", domain.GenerateParams{MaxNewTokens: 42, Temperature: 0.1})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Q: Paris." {
		t.Errorf("Generate = %q, want %q", out, "Q: Paris.")
	}
	if !got.Raw || got.Stream {
		t.Errorf("request raw=%v stream=%v, want raw and not streaming", got.Raw, got.Stream)
	}
	if got.Options.NumPredict != 42 || got.Options.Temperature != 0.1 {
		t.Errorf("options = %+v", got.Options)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewProvider(WithBaseURL(srv.URL)).Generate(context.Background(), "Q:", domain.GenerateParams{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"tinyllama:latest"}]}`))
	}))
	defer srv.Close()

	if err := NewProvider(WithBaseURL(srv.URL)).Init(context.Background()); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := NewProvider(WithBaseURL(srv.URL), WithModel("phi3")).Init(context.Background()); err == nil {
		t.Error("expected error for missing model")
	}
}
