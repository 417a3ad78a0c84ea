// Package llm provides chat completion clients for answer generation.
package llm

import (
	"context"
	"errors"

	"github.com/hyperdoc/kotae/internal/models"
)

// ErrGenerationFailed wraps any provider failure (auth, rate limit, network,
// malformed response). The core never retries; a retry policy, if wanted,
// belongs in a wrapping layer.
var ErrGenerationFailed = errors.New("text generation failed")

// ChatClient generates a completion for an ordered message sequence.
// Implementations must honor ctx cancellation and deadlines.
type ChatClient interface {
	Generate(ctx context.Context, messages []models.ChatTurn, maxTokens int) (string, error)
}
