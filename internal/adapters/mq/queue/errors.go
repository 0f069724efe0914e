package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("score queue is full")
	ErrClosed = errors.New("score queue is closed")
)
