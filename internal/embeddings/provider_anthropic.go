package embeddings

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic exists to mirror the teacher's provider-factory shape
// (one backend type per LLM vendor); Anthropic itself does not expose an
// embeddings endpoint, so Embed always fails with a clear error directing
// callers to provider=gemini or provider=stub instead. The client is
// still constructed so future Anthropic-backed derived features (not
// embeddings) have a ready collaborator.
type Anthropic struct {
	client *anthropic.Client
}

// NewAnthropic constructs an Anthropic client authenticated with apiKey.
func NewAnthropic(apiKey string) *Anthropic {
	return &Anthropic{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (a *Anthropic) Dimension(string) int { return 0 }

func (a *Anthropic) Embed(context.Context, string, []string) ([][]float32, error) {
	return nil, fmt.Errorf("embeddings: anthropic has no embeddings endpoint; use provider=gemini or provider=stub")
}
