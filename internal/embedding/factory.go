package embedding

import (
	"fmt"

	"github.com/hyperdoc/kotae/internal/config"
)

// NewFromConfig builds the embedder selected by cfg. The "hash" provider is
// local and deterministic; "openai" talks to a remote OpenAI-compatible
// endpoint and is wrapped in an LRU cache.
func NewFromConfig(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHashEmbedder(cfg.Dimensions, cfg.MaxTokens), nil
	case "openai":
		e, err := NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			APIKeyEnv:  cfg.APIKeyEnv,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return NewCachedEmbedder(e, cfg.CacheSize), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
