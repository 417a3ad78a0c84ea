package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperdoc/kotae/internal/chat"
	"github.com/hyperdoc/kotae/internal/llm"
	"github.com/hyperdoc/kotae/internal/models"
	"github.com/hyperdoc/kotae/internal/store"
	"go.uber.org/zap"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.config.Upload.MaxFileSizeBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, http.StatusBadRequest, "file size exceeds limit or malformed upload")
		return
	}
	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !isPDF(header.Header.Get("Content-Type"), header.Filename) {
		s.respondError(w, http.StatusBadRequest, "invalid file type, only PDF files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	s.logger.Info("upload received",
		zap.String("file_name", header.Filename),
		zap.Int64("file_size", header.Size),
	)

	parsed, err := s.extractor.ExtractBytes(content)
	if err != nil {
		s.logger.Error("PDF parsing failed", zap.String("file_name", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	documentID := uuid.NewString()
	stored, err := s.store.AddDocument(r.Context(), documentID, parsed.Pages, models.Metadata{
		FileName: header.Filename,
		FileSize: header.Size,
	})
	if err != nil {
		s.logger.Error("vectorization failed", zap.String("document_id", documentID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metadata, err := s.store.Metadata(documentID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.Int("total_pages", parsed.TotalPages),
		zap.Int("stored_pages", stored),
	)
	s.respondSuccess(w, http.StatusOK, "PDF uploaded and processed successfully", map[string]any{
		"documentId": documentID,
		"fileName":   header.Filename,
		"totalPages": parsed.TotalPages,
		"metadata":   metadata,
	})
}

type chatRequest struct {
	DocumentID          string            `json:"documentId"`
	Query               string            `json:"query"`
	ConversationHistory []models.ChatTurn `json:"conversationHistory"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DocumentID == "" || req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "missing required fields: documentId and query")
		return
	}
	if !s.store.HasDocument(req.DocumentID) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}

	s.logger.Debug("chat request",
		zap.String("document_id", req.DocumentID),
		zap.String("query", req.Query),
		zap.Int("history_turns", len(req.ConversationHistory)),
	)

	answer, err := s.assembler.Answer(r.Context(), req.DocumentID, req.Query, req.ConversationHistory)
	if err != nil {
		s.logger.Error("chat failed", zap.String("document_id", req.DocumentID), zap.Error(err))
		s.respondError(w, chatErrorStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": answer})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentId")
	metadata, err := s.store.Metadata(documentID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"suggestions":  chat.Suggestions(),
			"documentName": metadata.FileName,
		},
	})
}

func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentId")
	metadata, err := s.store.Metadata(documentID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": metadata})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentId")
	if !s.store.RemoveDocument(documentID) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.logger.Info("document deleted", zap.String("document_id", documentID))
	s.respondSuccess(w, http.StatusOK, "Document deleted successfully", nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "kotae API is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"documents":            s.store.Len(),
		"document_ids":         s.store.DocumentIDs(),
		"embedding_dimensions": s.embedder.Dimensions(),
		"config": map[string]any{
			"embedding_provider": s.config.Embedding.Provider,
			"chat_provider":      s.config.Chat.Provider,
			"chat_model":         s.config.Chat.Model,
			"top_k":              s.config.Chat.TopK,
			"max_file_size_mb":   s.config.Upload.MaxFileSizeMB,
		},
	})
}

// chatErrorStatus maps assembler errors to HTTP status codes.
func chatErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isPDF accepts a file when either the declared content type or the file
// extension identifies it as PDF. Browsers are inconsistent about multipart
// part content types, so the extension is a fallback, not a replacement.
func isPDF(contentType, filename string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func (s *Server) respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	body := map[string]any{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	s.respondJSON(w, status, body)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
