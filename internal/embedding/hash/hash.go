// Package hash provides an offline embedding backend based on feature hashing.
// It needs no model download and is used for tests and air-gapped runs.
package hash

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"pdfrag/internal/textutil"
)

// probes is the number of buckets each token is hashed into.
const probes = 4

// Embedder hashes each token into a fixed-width signed vector.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder producing vectors of the given width.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &Embedder{dimension: dimension}
}

// ModelName returns the identifier of this embedder implementation.
func (e *Embedder) ModelName() string { return "hash-" + strconv.Itoa(e.dimension) }

// Dimensions returns the dimensionality of the produced vectors.
func (e *Embedder) Dimensions() int { return e.dimension }

// EmbedTokens returns one hashed vector per non-stopword token.
// Texts made only of stopwords fall back to hashing every token.
func (e *Embedder) EmbedTokens(_ context.Context, text string) ([][]float32, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, errors.New("no tokens found in text")
	}
	rows := make([][]float32, len(tokens))
	for i, tok := range tokens {
		row := make([]float32, e.dimension)
		for p := 0; p < probes; p++ {
			h := fnv.New64a()
			_, _ = h.Write([]byte(tok))
			_, _ = h.Write([]byte{'#', byte('0' + p)})
			sum := h.Sum64()
			idx := int(sum % uint64(e.dimension))
			if sum>>63 == 1 {
				row[idx] -= 1
			} else {
				row[idx] += 1
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func tokenize(text string) []string {
	raw := textutil.Words(text)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if textutil.IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return raw
	}
	return out
}
