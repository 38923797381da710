// Package ollama generates text with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pdfrag/internal/domain"
)

const (
	DefaultURL     = "http://localhost:11434"
	DefaultModel   = "tinyllama"
	DefaultTimeout = 300 * time.Second

	apiPathTags     = "/api/tags"
	apiPathGenerate = "/api/generate"
)

// Provider calls /api/generate in raw mode so the prompt template is sent to
// the model unchanged.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the generation model.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		p.client.Timeout = timeout
	}
}

// NewProvider creates a new Ollama generation provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		baseURL: DefaultURL,
		model:   DefaultModel,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ModelName returns the generation model.
func (p *Provider) ModelName() string { return p.model }

// Init checks that the server is reachable and has the model pulled.
func (p *Provider) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+apiPathTags, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == p.model || m.Name == p.model+":latest" {
			return nil
		}
	}
	return fmt.Errorf("model %s not found; run 'ollama pull %s'", p.model, p.model)
}

// Generate returns the prompt followed by the model's continuation.
func (p *Provider) Generate(ctx context.Context, prompt string, params domain.GenerateParams) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  p.model,
		Prompt: prompt,
		Raw:    true,
		Stream: false,
		Options: generateOptions{
			Temperature: params.Temperature,
			NumPredict:  params.MaxNewTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+apiPathGenerate, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return prompt + out.Response, nil
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Raw     bool            `json:"raw"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
