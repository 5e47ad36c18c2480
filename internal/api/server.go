package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/usecase"
)

// maxUploadBytes bounds one multipart upload (64 MiB).
const maxUploadBytes = 64 << 20

// Server exposes the question answering pipeline over HTTP.
type Server struct {
	orchestrator *usecase.Orchestrator
	uploadDir    string
	log          *zap.Logger
}

// NewServer creates the HTTP server. Uploaded files are stored under
// uploadDir before ingestion.
func NewServer(o *usecase.Orchestrator, uploadDir string, log *zap.Logger) *Server {
	return &Server{
		orchestrator: o,
		uploadDir:    uploadDir,
		log:          log,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/query", s.handleQuery)
	r.Post("/chat", s.handleChat)
	r.Post("/upload", s.handleUpload)
	r.Get("/documents", s.handleDocuments)
	r.Get("/sessions/{id}", s.handleSessionHistory)
	r.Delete("/sessions/{id}", s.handleClearSession)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"index_ready": s.orchestrator.Ready(),
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answer, err := s.orchestrator.Query(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Answer:       answer.Answer,
		Source:       answer.Source,
		QualityScore: answer.QualityScore,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.orchestrator.Chat(r.Context(), req.Question, req.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:       result.Answer.Answer,
		Source:       result.Answer.Source,
		QualityScore: result.Answer.QualityScore,
		SessionID:    result.SessionID,
		History:      toMessages(result.History),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart upload"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid file name"})
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		s.writeError(w, err)
		return
	}
	dest := filepath.Join(s.uploadDir, name)
	out, err := os.Create(dest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.writeError(w, err)
		return
	}
	if err := out.Close(); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.orchestrator.Upload(dest, nil); err != nil {
		s.writeError(w, err)
		return
	}

	s.log.Info("document uploaded", zap.String("file", name))
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "indexed",
		"document": name,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.orchestrator.Documents()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": names})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history := s.orchestrator.SessionHistory(id)
	if history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    id,
		"message_count": len(history),
		"history":       toMessages(history),
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.orchestrator.ClearSession(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrNoIndexAvailable):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGenerationFailed):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrInconsistentState):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
