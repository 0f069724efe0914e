package api

import (
	"context"
	"net/http"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

// ScoreDependencies defines the synchronous scoring operations.
type ScoreDependencies interface {
	Score(ctx context.Context, req model.ScoreRequest) (model.Assessment, error)
	ScoreBatch(ctx context.Context, reqs []model.ScoreRequest) ([]model.Assessment, error)
}

type batchRequest struct {
	Requests []model.ScoreRequest `json:"requests"`
}

type batchResponse struct {
	Results []types.Result `json:"results"`
}

// ScoresHandler handles synchronous score requests.
type ScoresHandler struct {
	deps         ScoreDependencies
	maxBodyBytes int64
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies, maxBodyBytes int64) *ScoresHandler {
	return &ScoresHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostScore handles POST /scores requests. Engine failures are part of
// the result and still answer 200.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	var req model.ScoreRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	a, err := h.deps.Score(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if req.PatientID != "" && a.Scored() {
		w.Header().Set("Location", "/assessments/"+a.ID)
	}
	writeJSON(w, http.StatusOK, a.Result)
}

// HandlePostBatch handles POST /scores/batch requests.
func (h *ScoresHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score_batch"
	var req batchRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.ScoreBatch(r.Context(), req.Requests)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	resp := batchResponse{Results: make([]types.Result, len(out))}
	for i, a := range out {
		resp.Results[i] = a.Result
	}
	writeJSON(w, http.StatusOK, resp)
}
