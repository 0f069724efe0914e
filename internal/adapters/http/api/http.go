// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/cors"

	service "github.com/okian/pediscore/internal/app"
	"github.com/okian/pediscore/internal/domain/composite"
	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/scoring"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Score(ctx context.Context, req model.ScoreRequest) (model.Assessment, error)
	ScoreBatch(ctx context.Context, reqs []model.ScoreRequest) ([]model.Assessment, error)
	Submit(ctx context.Context, req model.ScoreRequest) (service.Receipt, error)

	Get(ctx context.Context, id string) (model.Assessment, error)
	History(ctx context.Context, patientID, scoreType string) ([]model.Assessment, error)
	Risk(ctx context.Context, patientID string) (composite.Summary, error)
	Trend(ctx context.Context, patientID, scoreType string) (composite.Series, error)

	Schemas() []scoring.Schema
	Schema(scoreType string) (scoring.Schema, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	assessmentsHandler *AssessmentsHandler
	patientsHandler    *PatientsHandler
	schemasHandler     *SchemasHandler

	allowedOrigins []string
	maxBodyBytes   int64
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the origins allowed by CORS.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		allowedOrigins: []string{"*"},
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.scoresHandler = NewScoresHandler(deps, s.maxBodyBytes)
	s.assessmentsHandler = NewAssessmentsHandler(deps, s.maxBodyBytes)
	s.patientsHandler = NewPatientsHandler(deps)
	s.schemasHandler = NewSchemasHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("POST /scores/batch", MetricsMiddleware(s.scoresHandler.HandlePostBatch, "scores_batch"))

	mux.HandleFunc("POST /assessments", MetricsMiddleware(s.assessmentsHandler.HandlePostAssessment, "assessments"))
	mux.HandleFunc("GET /assessments/{id}", MetricsMiddleware(s.assessmentsHandler.HandleGetAssessment, "assessment"))
	mux.HandleFunc("GET /assessments/{id}/report", MetricsMiddleware(s.assessmentsHandler.HandleGetReport, "assessment_report"))

	mux.HandleFunc("GET /patients/{id}/assessments", MetricsMiddleware(s.patientsHandler.HandleGetHistory, "patient_history"))
	mux.HandleFunc("GET /patients/{id}/risk", MetricsMiddleware(s.patientsHandler.HandleGetRisk, "patient_risk"))
	mux.HandleFunc("GET /patients/{id}/trend", MetricsMiddleware(s.patientsHandler.HandleGetTrend, "patient_trend"))

	mux.HandleFunc("GET /schemas", MetricsMiddleware(s.schemasHandler.HandleList, "schemas"))
	mux.HandleFunc("GET /schemas/{scoreType}", MetricsMiddleware(s.schemasHandler.HandleGet, "schema"))
}

// Handler wraps next with the CORS policy of the server.
func (s *Server) Handler(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	})(next)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "batch_too_large", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// decodeJSON reads one JSON document from the body. Numbers in free-form
// input maps stay json.Number.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode body: unexpected data after the JSON document")
	}
	return nil
}
