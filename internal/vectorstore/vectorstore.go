// Package vectorstore holds the shared record validation, vector encoding and
// similarity helpers used by the store backends.
package vectorstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"pdfrag/internal/domain"
)

var (
	// ErrDimensionMismatch is returned when a collection exists with a
	// different dimensionality than requested.
	ErrDimensionMismatch = errors.New("collection dimensionality mismatch")

	// ErrInvalidRecord is returned by Append for records that cannot be stored.
	ErrInvalidRecord = errors.New("invalid chunk record")

	// ErrNotOpen is returned when a store is used before OpenOrCreate.
	ErrNotOpen = errors.New("vector store is not open")
)

// Validate checks that c can be persisted in a collection of width dims.
func Validate(c domain.Chunk, dims int) error {
	if len(c.Vector) != dims {
		return fmt.Errorf("%w: vector has %d dimensions, want %d", ErrInvalidRecord, len(c.Vector), dims)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidRecord)
	}
	for i, v := range c.Vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite component at %d", ErrInvalidRecord, i)
		}
	}
	return nil
}

// EncodeVector serializes v as little-endian float32 values.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector parses a blob written by EncodeVector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

// CosineSimilarity returns the cosine of the angle between a and b. ok is
// false when the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float32) (sim float64, ok bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
