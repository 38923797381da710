package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfrag/internal/openaiclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openaiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("PDFRAG_TEST_OPENAI_KEY", "sk-test")
	api, err := openaiclient.New(openaiclient.Config{
		BaseURL:    srv.URL,
		APIKeyEnv:  "PDFRAG_TEST_OPENAI_KEY",
		MaxRetries: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return api
}

func TestEmbedTokens_RequestsConfiguredDimensions(t *testing.T) {
	var got struct {
		Model      string   `json:"model"`
		Input      []string `json:"input"`
		Dimensions int      `json:"dimensions"`
	}
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,0.125]}],"model":"text-embedding-3-small"}`))
	})

	rows, err := NewClient(api, "", 3).EmbedTokens(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedTokens failed: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 3 || rows[0][0] != 0.5 {
		t.Errorf("rows = %v", rows)
	}
	if got.Model != "text-embedding-3-small" || got.Dimensions != 3 {
		t.Errorf("request model=%q dimensions=%d", got.Model, got.Dimensions)
	}
	if len(got.Input) != 1 || got.Input[0] != "hello" {
		t.Errorf("request input = %v", got.Input)
	}
}

func TestEmbedTokens_Errors(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})
	c := NewClient(api, "text-embedding-3-small", 3)

	if _, err := c.EmbedTokens(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := c.EmbedTokens(context.Background(), "hello"); err == nil {
		t.Error("expected error for empty response")
	}
}
