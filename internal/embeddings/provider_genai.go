package embeddings

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenaiDimensions maps known Gemini embedding model names to their output
// width, since the API response carries the vector but callers need the
// dimension ahead of an actual call too (e.g. to size the ANN index).
var GenaiDimensions = map[string]int{
	"text-embedding-004": 768,
	"gemini-embedding-001": 3072,
}

// Genai embeds words through Google's Gemini embedding models.
type Genai struct {
	client *genai.Client
}

// NewGenai constructs a Genai provider authenticated with apiKey.
func NewGenai(ctx context.Context, apiKey string) (*Genai, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: create genai client: %w", err)
	}
	return &Genai{client: client}, nil
}

func (g *Genai) Dimension(modelName string) int {
	if d, ok := GenaiDimensions[modelName]; ok {
		return d
	}
	return 768
}

func (g *Genai) Embed(ctx context.Context, modelName string, words []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(words))
	for i, w := range words {
		contents[i] = genai.NewContentFromText(w, genai.RoleUser)
	}

	resp, err := g.client.Models.EmbedContent(ctx, modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embeddings: genai embed content: %w", err)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
