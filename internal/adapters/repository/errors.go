package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound          = errors.New("assessment not found")
	ErrInvalidAssessment = errors.New("assessment needs an id and a patient id")
)
