// Package store holds vectorized documents in memory, keyed by document ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperdoc/kotae/internal/embedding"
	"github.com/hyperdoc/kotae/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrDocumentNotFound is returned for operations referencing an unknown
	// document ID.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIngestInFlight is returned when a second ingest is issued for an ID
	// whose first ingest has not finished.
	ErrIngestInFlight = errors.New("ingest already in flight for document")
)

// Store keeps documents and their per-page embeddings in memory. Documents
// are published atomically: a document becomes visible only after all of its
// pages have been embedded. There is no persistence across restarts.
type Store struct {
	embedder embedding.Embedder
	logger   *zap.Logger

	mu        sync.RWMutex
	documents map[string]*models.Document
	inFlight  map[string]struct{}
}

// New creates an empty store that embeds pages with the given embedder.
func New(embedder embedding.Embedder, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		embedder:  embedder,
		logger:    logger,
		documents: make(map[string]*models.Document),
		inFlight:  make(map[string]struct{}),
	}
}

// AddDocument embeds every page of a document and publishes it under id.
// A page whose embedding fails is logged and skipped; one bad page never
// aborts the whole document. Metadata keeps the nominal input page count in
// TotalPages even when fewer pages were stored. Returns the number of pages
// actually stored.
//
// A concurrent second ingest for the same id fails with ErrIngestInFlight;
// re-ingesting a finished id replaces the previous document.
func (s *Store) AddDocument(ctx context.Context, id string, pages []models.PageText, meta models.Metadata) (int, error) {
	s.mu.Lock()
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrIngestInFlight, id)
	}
	s.inFlight[id] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, id)
		s.mu.Unlock()
	}()

	s.logger.Info("vectorizing document",
		zap.String("document_id", id),
		zap.Int("pages", len(pages)),
	)

	vectorized := make([]models.Page, 0, len(pages))
	for _, page := range pages {
		emb, err := s.embedder.Embed(ctx, page.Text)
		if err != nil {
			s.logger.Warn("page vectorization failed, skipping",
				zap.String("document_id", id),
				zap.Int("page", page.PageNumber),
				zap.Error(err),
			)
			continue
		}
		vectorized = append(vectorized, models.Page{
			PageNumber: page.PageNumber,
			Text:       page.Text,
			Embedding:  emb,
		})
	}

	meta.TotalPages = len(pages)
	meta.CreatedAt = time.Now()
	doc := &models.Document{ID: id, Pages: vectorized, Metadata: meta}

	s.mu.Lock()
	s.documents[id] = doc
	s.mu.Unlock()

	s.logger.Info("document added",
		zap.String("document_id", id),
		zap.Int("stored_pages", len(vectorized)),
		zap.Int("total_pages", meta.TotalPages),
	)
	return len(vectorized), nil
}

// HasDocument reports whether id is stored.
func (s *Store) HasDocument(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.documents[id]
	return ok
}

// Metadata returns the metadata for id.
func (s *Store) Metadata(id string) (models.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return models.Metadata{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc.Metadata, nil
}

// Pages returns the stored pages of id. Pages are immutable after publish,
// so the returned slice is safe to read concurrently; callers must not
// modify it.
func (s *Store) Pages(id string) ([]models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc.Pages, nil
}

// RemoveDocument deletes id and reports whether it existed.
func (s *Store) RemoveDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.documents[id]
	delete(s.documents, id)
	return ok
}

// DocumentIDs returns all stored document IDs in no particular order.
func (s *Store) DocumentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Clear drops all documents. Intended for teardown and tests.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]*models.Document)
	s.logger.Debug("store cleared")
}
