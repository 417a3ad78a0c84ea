// Package embedding provides text embedding: a deterministic hash embedder
// and an OpenAI-compatible remote provider behind a common interface.
package embedding

import "context"

// Embedder produces fixed-dimension vector embeddings for text.
// Implementations must be deterministic per input and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
