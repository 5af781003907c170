package embeddings

import (
	"context"
	"hash/fnv"
)

// Stub is a deterministic, network-free embedding provider used by tests
// (spec.md §8 scenario 5's "mock-fast embedding function"): each word's
// vector is derived from its FNV hash so identical words always produce
// identical vectors and the provider never blocks on I/O.
type Stub struct {
	dim int
}

// NewStub constructs a stub provider producing dim-wide vectors.
func NewStub(dim int) *Stub {
	if dim <= 0 {
		dim = 8
	}
	return &Stub{dim: dim}
}

func (s *Stub) Dimension(string) int { return s.dim }

func (s *Stub) Embed(_ context.Context, _ string, words []string) ([][]float32, error) {
	out := make([][]float32, len(words))
	for i, w := range words {
		out[i] = s.vector(w)
	}
	return out, nil
}

func (s *Stub) vector(word string) []float32 {
	vec := make([]float32, s.dim)
	h := fnv.New64a()
	for i := range vec {
		h.Reset()
		_, _ = h.Write([]byte(word))
		_, _ = h.Write([]byte{byte(i)})
		sum := h.Sum64()
		vec[i] = float32(sum%10000) / 10000.0
	}
	return vec
}
