// Package repository stores assessment history.
package repository

import (
	"context"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

// Store provides read/write access to assessment history.
type Store interface {
	// Save stores a, replacing an earlier assessment with the same ID.
	// Returns ErrInvalidAssessment if a has no ID or patient.
	Save(ctx context.Context, a model.Assessment) error

	// Get returns one assessment. Returns ErrNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (model.Assessment, error)

	// History returns a patient's assessments oldest first, restricted to t
	// unless t is empty. An unknown patient has an empty history.
	History(ctx context.Context, patientID string, t types.ScoreType) ([]model.Assessment, error)

	// Count returns the number of stored assessments.
	Count(ctx context.Context) int

	// Patients returns the number of patients with history.
	Patients(ctx context.Context) int
}
