package embedding

import (
	"crypto/sha256"
	"strings"
)

// MockEmbedder is a deterministic offline embedder: each token hashes to a
// bucket, so texts sharing words get similar vectors. Used by tests and by
// the "mock" provider for running without a model server.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dimension)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			sum := sha256.Sum256([]byte(word))
			bucket := (int(sum[0])<<8 | int(sum[1])) % e.dimension
			vec[bucket]++
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
