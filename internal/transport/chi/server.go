// Package chi exposes the tutoring API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/domain"
	chatuc "github.com/studentmate/tutor/internal/usecase/chat"
	documentuc "github.com/studentmate/tutor/internal/usecase/document"
	"github.com/studentmate/tutor/internal/usecase/evaluation"
	generationuc "github.com/studentmate/tutor/internal/usecase/generation"
	healthuc "github.com/studentmate/tutor/internal/usecase/health"
	helpdeskuc "github.com/studentmate/tutor/internal/usecase/helpdesk"
	remediationuc "github.com/studentmate/tutor/internal/usecase/remediation"
	reportuc "github.com/studentmate/tutor/internal/usecase/report"
)

// Error response codes.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeInsufficientContent = "insufficient_content"
	codeNotFound            = "not_found"
	codeModelError          = "model_error"
	codeExternalService     = "external_service_error"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the use case services behind the HTTP surface.
type Server struct {
	chat          *chatuc.Service
	generation    *generationuc.Orchestrator
	remediation   *remediationuc.Service
	documents     *documentuc.Service
	reports       *reportuc.Service
	helpdesk      *helpdeskuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(
	chat *chatuc.Service,
	generation *generationuc.Orchestrator,
	remediation *remediationuc.Service,
	documents *documentuc.Service,
	reports *reportuc.Service,
	helpdesk *helpdeskuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:        chat,
		generation:  generation,
		remediation: remediation,
		documents:   documents,
		reports:     reports,
		helpdesk:    helpdesk,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		insufficientContentHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrModelFailure, http.StatusBadGateway, codeModelError),
		sentinelHandler(domain.ErrExternalService, http.StatusBadGateway, codeExternalService),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/rag/user-documents/chat", s.handleChat)

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/generate", s.handleGenerateQuiz)
			r.Post("/evaluate", s.handleEvaluateQuiz)
			r.Post("/analyze-mistakes", s.handleAnalyzeMistakes)
			r.Post("/save-report", s.handleSaveReport)
		})

		r.Post("/flashcards/generate", s.handleGenerateFlashcards)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", s.handleUploadDocument)
			r.Get("/", s.handleListDocuments)
			r.Delete("/{id}", s.handleDeleteDocument)
		})

		r.Route("/helpdesk/tickets", func(r chi.Router) {
			r.Post("/", s.handleCreateTicket)
			r.Get("/", s.handleListTickets)
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type chatRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	answer, err := s.chat.Chat(r.Context(), req.Username, req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

type quizRequest struct {
	Username      string `json:"username"`
	QuestionCount int    `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "username is required")
		return
	}

	quiz, err := s.generation.GenerateQuiz(r.Context(), req.Username, req.QuestionCount, req.Difficulty)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

type flashcardRequest struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	CardCount int    `json:"cardCount"`
}

func (s *Server) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req flashcardRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "username is required")
		return
	}

	set, err := s.generation.GenerateFlashcards(r.Context(), req.Username, req.Message, req.CardCount)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, set)
}

type evaluateRequest struct {
	Questions []domain.QuizQuestion `json:"questions"`
	Answers   []string              `json:"answers"`
}

func (s *Server) handleEvaluateQuiz(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "questions are required")
		return
	}

	writeJSON(w, http.StatusOK, evaluation.Evaluate(req.Questions, req.Answers))
}

type analyzeMistakesRequest struct {
	Username     string               `json:"username"`
	WrongAnswers []domain.WrongAnswer `json:"wrongAnswers"`
}

type analyzeMistakesResponse struct {
	Analysis   string                       `json:"analysis"`
	Resources  []domain.RemediationResource `json:"webResources"`
	ReportData reportuc.Data                `json:"reportData"`
}

func (s *Server) handleAnalyzeMistakes(w http.ResponseWriter, r *http.Request) {
	var req analyzeMistakesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "username is required")
		return
	}

	analysis, err := s.remediation.AnalyzeMistakes(r.Context(), req.Username, req.WrongAnswers)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeMistakesResponse{
		Analysis:  analysis.Analysis,
		Resources: analysis.Resources,
		ReportData: reportuc.Data{
			Analysis:     analysis.Analysis,
			WrongAnswers: req.WrongAnswers,
			Resources:    analysis.Resources,
		},
	})
}

type saveReportRequest struct {
	Username   string        `json:"username"`
	ReportData reportuc.Data `json:"reportData"`
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	var req saveReportRequest
	if !s.decode(w, r, &req) {
		return
	}

	path, err := s.reports.Save(r.Context(), req.Username, req.ReportData)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"filePath": path})
}

type uploadRequest struct {
	Username string `json:"username"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type uploadResponse struct {
	DocumentID string `json:"documentId"`
	Chunks     int    `json:"chunks"`
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !s.decode(w, r, &req) {
		return
	}

	info, err := s.documents.Upload(r.Context(), req.Username, req.Filename, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		DocumentID: info.ID,
		Chunks:     info.ChunkCount,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.DocumentInfo{}
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.documents.Delete(r.Context(), r.URL.Query().Get("username"), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ticketRequest struct {
	Username string `json:"username"`
	Issue    string `json:"issue"`
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if !s.decode(w, r, &req) {
		return
	}

	ticket, err := s.helpdesk.Create(r.Context(), req.Username, req.Issue)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := s.helpdesk.List(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, report)
}

// decode parses a JSON request body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler matching a single sentinel
// error. Validation messages are caller-facing and pass through; other
// sentinels expose only the sentinel text, not wrapped internals.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if errors.Is(err, domain.ErrValidation) {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

// insufficientContentHandler maps the no-usable-content case to 422 with
// an actionable message for the student.
func insufficientContentHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInsufficientContent) {
		return false
	}
	writeError(w, http.StatusUnprocessableEntity, codeInsufficientContent,
		"Not enough usable content in your documents. Please upload a document first.")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
