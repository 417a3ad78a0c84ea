package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperdoc/kotae/internal/chat"
	"github.com/hyperdoc/kotae/internal/config"
	"github.com/hyperdoc/kotae/internal/embedding"
	"github.com/hyperdoc/kotae/internal/extract"
	"github.com/hyperdoc/kotae/internal/llm"
	"github.com/hyperdoc/kotae/internal/models"
	"github.com/hyperdoc/kotae/internal/search"
	"github.com/hyperdoc/kotae/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer builds a server with the hash embedder, demo chat client, and
// a store pre-loaded with one two-page document "doc-1".
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens)
	documents := store.New(embedder, zap.NewNop())
	_, err := documents.AddDocument(context.Background(), "doc-1",
		[]models.PageText{
			{PageNumber: 1, Text: "Revenue grew 10%"},
			{PageNumber: 2, Text: "Risks include competition"},
		},
		models.Metadata{FileName: "report.pdf", FileSize: 1024},
	)
	require.NoError(t, err)

	retriever := search.NewRetriever(documents, embedder)
	assembler := chat.NewAssembler(retriever, llm.NewDemoClient(), chat.Options{}, zap.NewNop())
	return NewServer(documents, extract.NewExtractor(), assembler, embedder, cfg, zap.NewNop())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t)
	payload, _ := json.Marshal(map[string]any{
		"documentId": "doc-1",
		"query":      "What were the risks",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	srv.handleChat(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["response"])
	assert.NotNil(t, data["citations"])
	relevant := data["relevantPages"].([]any)
	require.Len(t, relevant, 2)
	top := relevant[0].(map[string]any)
	assert.Equal(t, float64(2), top["pageNumber"])
}

func TestHandleChat_MissingFields(t *testing.T) {
	srv := newTestServer(t)
	for _, payload := range []string{
		`{"query":"hello"}`,
		`{"documentId":"doc-1"}`,
		`{}`,
	} {
		r := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(payload)))
		w := httptest.NewRecorder()
		srv.handleChat(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload: %s", payload)
	}
}

func TestHandleChat_UnknownDocument(t *testing.T) {
	srv := newTestServer(t)
	payload := []byte(`{"documentId":"nonexistent-id","query":"hello"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	srv.handleChat(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleChat_InvalidHistory(t *testing.T) {
	srv := newTestServer(t)
	payload := []byte(`{"documentId":"doc-1","query":"hello","conversationHistory":[{"role":"narrator","content":"x"}]}`)
	r := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	srv.handleChat(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSuggestions(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/chat/suggestions/doc-1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "report.pdf", data["documentName"])
	assert.NotEmpty(t, data["suggestions"])
}

func TestHandleSuggestions_NotFound(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/chat/suggestions/nonexistent-id", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetMetadata(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/pdf/doc-1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "report.pdf", data["fileName"])
	assert.Equal(t, float64(2), data["totalPages"])
}

func TestHandleGetMetadata_NotFound(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/pdf/nonexistent-id", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDeleteDocument(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodDelete, "/api/pdf/doc-1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, srv.store.HasDocument("doc-1"))

	// Deleting again is a 404.
	r = httptest.NewRequest(http.MethodDelete, "/api/pdf/doc-1", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleUpload_NoFile(t *testing.T) {
	srv := newTestServer(t)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("unrelated", "value"))
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	srv.handleUpload(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpload_WrongType(t *testing.T) {
	srv := newTestServer(t)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pdf", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text, not a PDF"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	srv.handleUpload(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpload_InvalidPDF(t *testing.T) {
	srv := newTestServer(t)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pdf", "broken.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-fake not actually a pdf"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	srv.handleUpload(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["error"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["documents"])
	assert.Equal(t, float64(384), body["embedding_dimensions"])
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("application/pdf", "whatever.bin"))
	assert.True(t, isPDF("application/octet-stream", "report.PDF"))
	assert.False(t, isPDF("text/plain", "notes.txt"))
}
