// Package openai generates text through an OpenAI-compatible completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"pdfrag/internal/domain"
	"pdfrag/internal/openaiclient"
)

// Client is a completions backend. Requests set Echo so the output starts
// with the prompt, matching the other backends.
type Client struct {
	api   *openaiclient.Client
	model string
}

// NewClient creates a completions backend for model.
func NewClient(api *openaiclient.Client, model string) *Client {
	if model == "" {
		model = openai.GPT3Dot5TurboInstruct
	}
	return &Client{api: api, model: model}
}

// ModelName returns the remote model identifier.
func (c *Client) ModelName() string { return c.model }

// Generate returns the echoed prompt followed by the completion.
func (c *Client) Generate(ctx context.Context, prompt string, params domain.GenerateParams) (string, error) {
	var resp openai.CompletionResponse
	err := c.api.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.api.API().CreateCompletion(ctx, openai.CompletionRequest{
			Model:       c.model,
			Prompt:      prompt,
			MaxTokens:   params.MaxNewTokens,
			Temperature: float32(params.Temperature),
			Echo:        true,
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return resp.Choices[0].Text, nil
}
