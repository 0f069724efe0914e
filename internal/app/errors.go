package service

import (
	"errors"

	"github.com/okian/pediscore/internal/adapters/repository"
)

// Sentinel errors returned by the service.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrQueueFull      = errors.New("assessment queue is full")
	ErrBatchTooLarge  = errors.New("batch exceeds the maximum size")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = repository.ErrNotFound
)
