package llm

import (
	"fmt"
	"os"

	"github.com/hyperdoc/kotae/internal/config"
)

// NewFromConfig builds the chat client selected by cfg. When the configured
// provider is "openai" but no API key is present in the environment, the demo
// client is used instead so the server still runs locally.
func NewFromConfig(cfg *config.ChatConfig) (ChatClient, error) {
	switch cfg.Provider {
	case "demo":
		return NewDemoClient(), nil
	case "", "openai":
		if os.Getenv(cfg.APIKeyEnv) == "" {
			return NewDemoClient(), nil
		}
		return NewOpenAIClient(OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKeyEnv:   cfg.APIKeyEnv,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}
