// Package loadgen drives a running pediscore service with synthetic
// assessments and checks the composite risk it reports per patient.
package loadgen

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/pediscore/internal/domain/composite"
	"github.com/okian/pediscore/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL               string        // Base URL of the service
	Patients              int           // Number of synthetic patients
	AssessmentsPerPatient int           // Assessments submitted per patient
	DuplicateEvery        int           // Resend every Nth assessment with the same request ID; 0 disables
	Workers               int           // Patients submitted concurrently
	Timeout               time.Duration // HTTP request timeout
	Settle                time.Duration // How long to wait for the queue to drain
	OutputFile            string        // Optional file for the generated requests
}

// ErrInvalidConfig is returned for unusable run parameters.
var ErrInvalidConfig = errors.New("invalid load configuration")

func (c *Config) validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("url must not be empty"))
	}
	if c.Patients < 1 {
		errs = append(errs, fmt.Errorf("patients must be positive, got %d", c.Patients))
	}
	if c.AssessmentsPerPatient < 1 {
		errs = append(errs, fmt.Errorf("assessments must be positive, got %d", c.AssessmentsPerPatient))
	}
	if c.DuplicateEvery < 0 {
		errs = append(errs, fmt.Errorf("duplicate-every must not be negative, got %d", c.DuplicateEvery))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Plan is the generated workload for one patient, in submission order.
type Plan struct {
	PatientID string               `json:"patientId"`
	Requests  []model.ScoreRequest `json:"requests"`
}

// receipt mirrors the body of POST /assessments.
type receipt struct {
	Status       string `json:"status"`
	AssessmentID string `json:"assessmentId"`
	Duplicate    bool   `json:"duplicate"`
}

// riskReport mirrors the body of GET /patients/{id}/risk.
type riskReport struct {
	PatientID string `json:"patientId"`
	composite.Summary
}

// Stats holds run statistics.
type Stats struct {
	Generated          int
	Submitted          int
	Accepted           int
	Duplicate          int
	Failed             int
	PatientsVerified   int
	PatientsMismatched int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
