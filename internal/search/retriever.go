// Package search ranks stored document pages against a query by embedding
// similarity.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperdoc/kotae/internal/embedding"
	"github.com/hyperdoc/kotae/internal/models"
	"github.com/hyperdoc/kotae/internal/store"
	"github.com/hyperdoc/kotae/internal/vector"
)

// Retriever embeds queries and returns the most similar pages of a document.
// It only reads the store and is safe for concurrent use.
type Retriever struct {
	store    *store.Store
	embedder embedding.Embedder
}

// NewRetriever creates a retriever over the given store and embedder.
func NewRetriever(s *store.Store, e embedding.Embedder) *Retriever {
	return &Retriever{store: s, embedder: e}
}

// Search returns up to topK pages of documentID ranked by descending cosine
// similarity to query. Ties keep the original page order (stable sort), so
// results are reproducible. Returns store.ErrDocumentNotFound for unknown IDs.
func (r *Retriever) Search(ctx context.Context, documentID, query string, topK int) ([]models.SearchResult, error) {
	pages, err := r.store.Pages(documentID)
	if err != nil {
		return nil, err
	}
	queryEmb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]models.SearchResult, len(pages))
	for i, page := range pages {
		sim, err := vector.CosineSimilarity(queryEmb, page.Embedding)
		if err != nil {
			// Mixed embedding dimensions mean the store and query embedder
			// disagree, which is a wiring bug, not a request problem.
			return nil, fmt.Errorf("score page %d of %s: %w", page.PageNumber, documentID, err)
		}
		results[i] = models.SearchResult{
			PageNumber: page.PageNumber,
			Text:       page.Text,
			Similarity: sim,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}
