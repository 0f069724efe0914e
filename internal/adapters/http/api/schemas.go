package api

import (
	"net/http"

	"github.com/okian/pediscore/internal/domain/scoring"
)

// SchemaDependencies exposes scorer input schemas.
type SchemaDependencies interface {
	Schemas() []scoring.Schema
	Schema(scoreType string) (scoring.Schema, error)
}

type schemasResponse struct {
	Schemas []scoring.Schema `json:"schemas"`
}

// SchemasHandler serves input schemas.
type SchemasHandler struct {
	deps SchemaDependencies
}

// NewSchemasHandler creates a new schemas handler.
func NewSchemasHandler(deps SchemaDependencies) *SchemasHandler {
	return &SchemasHandler{deps: deps}
}

// HandleList handles GET /schemas requests.
func (h *SchemasHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schemasResponse{Schemas: h.deps.Schemas()})
}

// HandleGet handles GET /schemas/{scoreType} requests.
func (h *SchemasHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_schema"
	s, err := h.deps.Schema(r.PathValue("scoreType"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
