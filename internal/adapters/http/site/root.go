// Package site serves the landing page of the scoring service.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/pediscore/internal/report"
)

// Error constants
var (
	ErrGenerate = errors.New("landing page generation failed")
)

// Register renders the landing page once and serves it at exactly "/".
func Register(_ context.Context, mux *http.ServeMux) error {
	if mux == nil {
		panic("mux is nil")
	}
	h, err := NewRootHandler()
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	return nil
}

// RootHandler serves the rendered landing page.
type RootHandler struct {
	page []byte
}

// NewRootHandler renders the embedded Markdown page.
func NewRootHandler() (*RootHandler, error) {
	page, err := report.HTML("pediscore", indexMarkdown)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return &RootHandler{page: page}, nil
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.page)
}
