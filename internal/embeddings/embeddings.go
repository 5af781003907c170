// Package embeddings provides a provider-agnostic interface for turning
// vocabulary words into dense vectors, backed by a concrete Gemini
// implementation plus a deterministic stub used in tests, per spec.md
// §4.6.5. The Anthropic provider is registered but its Embed always
// returns an error.
package embeddings

import "context"

// Provider produces embeddings for a batch of words using a named model.
type Provider interface {
	// Embed returns one vector per word, in the same order.
	Embed(ctx context.Context, modelName string, words []string) ([][]float32, error)
	// Dimension returns the vector width modelName produces.
	Dimension(modelName string) int
}
