// Package models defines core data structures for documents, pages, and search results.
package models

import "time"

// Page is a single vectorized page of a document. Pages are immutable once
// created; Embedding is derived solely from Text.
type Page struct {
	PageNumber int       `json:"pageNumber"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}

// Metadata describes a stored document.
type Metadata struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	// TotalPages is the nominal page count at ingest time. It may exceed the
	// number of stored pages when some pages failed to vectorize.
	TotalPages int            `json:"totalPages"`
	CreatedAt  time.Time      `json:"createdAt"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Document is a stored document: its vectorized pages ordered by page number
// plus metadata.
type Document struct {
	ID       string   `json:"id"`
	Pages    []Page   `json:"pages"`
	Metadata Metadata `json:"metadata"`
}

// PageText is a raw extracted page before vectorization.
type PageText struct {
	PageNumber int    `json:"pageNumber"`
	Text       string `json:"text"`
}

// ExtractResult is the output of PDF text extraction: per-page text ordered
// by page number, 1-based and contiguous.
type ExtractResult struct {
	TotalPages int        `json:"totalPages"`
	Pages      []PageText `json:"pages"`
}

// SearchResult is a single retrieval hit. Produced fresh per query, never stored.
type SearchResult struct {
	PageNumber int     `json:"pageNumber"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}
