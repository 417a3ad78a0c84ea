// Package extract provides per-page text extraction from PDF files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperdoc/kotae/internal/models"
	"github.com/ledongthuc/pdf"
)

// ErrParseFailed indicates the PDF could not be parsed at all. Fatal for the
// ingest call; individual unreadable pages are tolerated instead.
var ErrParseFailed = errors.New("failed to parse PDF")

// Extractor extracts per-page plain text from PDF content.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBytes parses content as a PDF and returns one text entry per page,
// numbered 1..TotalPages with no gaps. A page whose text cannot be read
// contributes an empty string rather than failing the document. When the
// parser yields no text per page at all, the concatenated text is re-split
// heuristically across the reported page count.
func (e *Extractor) ExtractBytes(content []byte) (*models.ExtractResult, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrParseFailed)
	}

	texts := make([]string, numPages)
	anyText := false
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts[i-1] = text
		if strings.TrimSpace(text) != "" {
			anyText = true
		}
	}

	// Some PDFs only yield text as one undifferentiated stream. Fall back to
	// splitting it evenly across the reported pages so page numbers stay
	// meaningful, if only approximately.
	if !anyText {
		if full, err := wholeText(r); err == nil && strings.TrimSpace(full) != "" {
			texts = splitIntoPages(full, numPages)
		}
	}

	result := &models.ExtractResult{
		TotalPages: numPages,
		Pages:      make([]models.PageText, numPages),
	}
	for i, text := range texts {
		result.Pages[i] = models.PageText{
			PageNumber: i + 1,
			Text:       strings.TrimSpace(text),
		}
	}
	return result, nil
}

// wholeText extracts the document's full text as a single string.
func wholeText(r *pdf.Reader) (string, error) {
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
