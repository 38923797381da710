// Package openai embeds text through an OpenAI-compatible embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"pdfrag/internal/openaiclient"
)

// Client is an embeddings backend backed by go-openai.
type Client struct {
	api       *openaiclient.Client
	model     string
	dimension int
}

// NewClient creates an embeddings backend. Models of the text-embedding-3
// family are asked to shorten their output to dimension.
func NewClient(api *openaiclient.Client, model string, dimension int) *Client {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &Client{api: api, model: model, dimension: dimension}
}

// ModelName returns the remote model identifier.
func (c *Client) ModelName() string { return c.model }

// Dimensions returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimensions() int { return c.dimension }

// EmbedTokens returns the pooled embedding as a single row.
func (c *Client) EmbedTokens(ctx context.Context, text string) ([][]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	var resp openai.EmbeddingResponse
	err := c.api.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.api.API().CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model:      openai.EmbeddingModel(c.model),
			Input:      []string{text},
			Dimensions: c.dimension,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}
	src := resp.Data[0].Embedding
	v := make([]float32, len(src))
	for i := range src {
		v[i] = float32(src[i])
	}
	return [][]float32{v}, nil
}
