package embedding

import (
	"context"
	"strings"

	"github.com/hyperdoc/kotae/internal/vector"
)

const (
	// DefaultDimensions is the embedding vector length.
	DefaultDimensions = 384
	// DefaultMaxTokens caps how many leading tokens of a text contribute
	// to its embedding.
	DefaultMaxTokens = 100

	// emptyPageFallback is substituted for blank input so every page gets a
	// usable (non-zero) embedding.
	emptyPageFallback = "Empty page"
)

// HashEmbedder maps text to a unit vector via a bag-of-characters hash:
// each of the first maxTokens lowercase tokens adds 1/(position+1) to the
// bucket selected by the sum of its character codes mod dimensions. Earlier
// tokens weigh more. Deterministic, no external calls, never fails.
type HashEmbedder struct {
	dimensions int
	maxTokens  int
}

// NewHashEmbedder returns a hash embedder with the given dimensions and token cap.
// Non-positive arguments fall back to the defaults.
func NewHashEmbedder(dimensions, maxTokens int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &HashEmbedder{dimensions: dimensions, maxTokens: maxTokens}
}

// Embed returns the deterministic embedding of text. Blank input embeds as
// the literal "Empty page" (the fallback is non-blank, so this recurses at
// most once).
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := strings.ToLower(strings.TrimSpace(text))
	if clean == "" {
		return e.Embed(ctx, emptyPageFallback)
	}
	emb := make([]float32, e.dimensions)
	tokens := strings.Fields(clean)
	if len(tokens) > e.maxTokens {
		tokens = tokens[:e.maxTokens]
	}
	for idx, token := range tokens {
		var hash int
		for _, r := range token {
			hash += int(r)
		}
		emb[hash%e.dimensions] += float32(1) / float32(idx+1)
	}
	vector.NormalizeL2(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
