// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/pediscore/internal/domain/types"
)

// Assessment is one scored snapshot for a patient.
type Assessment struct {
	ID        string               `json:"id"`
	RequestID string               `json:"requestId,omitempty"` // client idempotency key
	PatientID string               `json:"patientId"`
	ScoreType types.ScoreType      `json:"scoreType"`
	Input     map[string]any       `json:"input"`
	Patient   types.PatientContext `json:"patient"`
	Result    types.Result         `json:"result"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Scored reports whether the stored result carries a computed score.
func (a Assessment) Scored() bool { return !a.Result.Failed() }

// ScoreJob is an assessment request waiting in the queue.
type ScoreJob struct {
	AssessmentID string
	RequestID    string
	PatientID    string
	ScoreType    types.ScoreType
	Input        map[string]any
	Patient      types.PatientContext
	SubmittedAt  time.Time
}

// Assessment builds the stored record for the job once its result is known.
func (j ScoreJob) Assessment(res types.Result) Assessment {
	return Assessment{
		ID:        j.AssessmentID,
		RequestID: j.RequestID,
		PatientID: j.PatientID,
		ScoreType: res.ScoreType,
		Input:     j.Input,
		Patient:   j.Patient,
		Result:    res,
		CreatedAt: j.SubmittedAt,
	}
}

// ScoreRequest asks for one score. PatientID is required for queued
// requests and optional for synchronous ones; RequestID makes a queued
// request idempotent.
type ScoreRequest struct {
	RequestID string               `json:"requestId,omitempty" yaml:"requestId,omitempty"`
	PatientID string               `json:"patientId,omitempty" yaml:"patientId,omitempty"`
	ScoreType types.ScoreType      `json:"scoreType" yaml:"scoreType"`
	Input     map[string]any       `json:"input" yaml:"input"`
	Patient   types.PatientContext `json:"patient" yaml:"patient"`
}

// Job turns the request into a queued job under assessmentID.
func (r ScoreRequest) Job(assessmentID string, at time.Time) ScoreJob {
	return ScoreJob{
		AssessmentID: assessmentID,
		RequestID:    r.RequestID,
		PatientID:    r.PatientID,
		ScoreType:    r.ScoreType,
		Input:        r.Input,
		Patient:      r.Patient,
		SubmittedAt:  at,
	}
}
