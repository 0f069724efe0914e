package api

import (
	"context"
	"net/http"

	"github.com/okian/pediscore/internal/domain/composite"
	"github.com/okian/pediscore/internal/domain/model"
)

// PatientDependencies defines the patient history queries.
type PatientDependencies interface {
	History(ctx context.Context, patientID, scoreType string) ([]model.Assessment, error)
	Risk(ctx context.Context, patientID string) (composite.Summary, error)
	Trend(ctx context.Context, patientID, scoreType string) (composite.Series, error)
}

type historyResponse struct {
	PatientID   string             `json:"patientId"`
	Assessments []model.Assessment `json:"assessments"`
}

type riskResponse struct {
	PatientID string `json:"patientId"`
	composite.Summary
}

type trendResponse struct {
	PatientID string `json:"patientId"`
	composite.Series
}

// PatientsHandler handles patient-level queries.
type PatientsHandler struct {
	deps PatientDependencies
}

// NewPatientsHandler creates a new patients handler.
func NewPatientsHandler(deps PatientDependencies) *PatientsHandler {
	return &PatientsHandler{deps: deps}
}

// HandleGetHistory handles GET /patients/{id}/assessments requests.
func (h *PatientsHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	id := r.PathValue("id")
	history, err := h.deps.History(r.Context(), id, r.URL.Query().Get("scoreType"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{PatientID: id, Assessments: history})
}

// HandleGetRisk handles GET /patients/{id}/risk requests.
func (h *PatientsHandler) HandleGetRisk(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_risk"
	id := r.PathValue("id")
	summary, err := h.deps.Risk(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, riskResponse{PatientID: id, Summary: summary})
}

// HandleGetTrend handles GET /patients/{id}/trend requests.
func (h *PatientsHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trend"
	id := r.PathValue("id")
	series, err := h.deps.Trend(r.Context(), id, r.URL.Query().Get("scoreType"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, trendResponse{PatientID: id, Series: series})
}
