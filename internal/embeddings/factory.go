package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
)

// Config selects and parameterizes an embedding provider.
type Config struct {
	Provider string // "gemini", "anthropic", or "stub"
	APIKey   string
	// StubDimension sizes the deterministic test provider; ignored by
	// network-backed providers, which size themselves from the model name.
	StubDimension int
}

// NewProvider creates the Provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg Config, logger arbor.ILogger) (Provider, error) {
	logger.Info().Str("provider", cfg.Provider).Msg("initializing embedding provider")

	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embeddings: APIKey is required for provider gemini")
		}
		return NewGenai(ctx, cfg.APIKey)

	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embeddings: APIKey is required for provider anthropic")
		}
		return NewAnthropic(cfg.APIKey), nil

	case "stub", "":
		return NewStub(cfg.StubDimension), nil

	default:
		return nil, fmt.Errorf("embeddings: unsupported provider %q", cfg.Provider)
	}
}
