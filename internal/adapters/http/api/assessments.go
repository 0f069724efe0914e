package api

import (
	"bytes"
	"context"
	"net/http"

	service "github.com/okian/pediscore/internal/app"
	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/report"
)

// AssessmentDependencies defines the asynchronous assessment operations.
type AssessmentDependencies interface {
	Submit(ctx context.Context, req model.ScoreRequest) (service.Receipt, error)
	Get(ctx context.Context, id string) (model.Assessment, error)
}

type ackResponse struct {
	Status       string `json:"status"`
	AssessmentID string `json:"assessmentId"`
	Duplicate    bool   `json:"duplicate"`
}

// AssessmentsHandler handles queued assessments.
type AssessmentsHandler struct {
	deps         AssessmentDependencies
	maxBodyBytes int64
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies, maxBodyBytes int64) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostAssessment handles POST /assessments requests.
func (h *AssessmentsHandler) HandlePostAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment"
	var req model.ScoreRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	receipt, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if receipt.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", AssessmentID: receipt.AssessmentID, Duplicate: true})
		return
	}
	w.Header().Set("Location", "/assessments/"+receipt.AssessmentID)
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", AssessmentID: receipt.AssessmentID})
}

// HandleGetAssessment handles GET /assessments/{id} requests.
func (h *AssessmentsHandler) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"
	a, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleGetReport handles GET /assessments/{id}/report requests. The report
// is HTML unless format=markdown is asked for.
func (h *AssessmentsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	a, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	var md bytes.Buffer
	if err := report.Assessment(&md, a); err != nil {
		writeServiceError(w, op, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write(md.Bytes())
		return
	}

	page, err := report.HTML("Assessment "+a.ID, md.Bytes())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
