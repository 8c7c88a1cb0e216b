package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMissingAPIKey   = errors.New("generation service credential not configured")
	ErrJobTerminal     = errors.New("job already in a terminal state")
	ErrQueueFull       = errors.New("worker queue full")
)
