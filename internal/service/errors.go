package service

import "errors"

// Common service errors. The API layer maps these to HTTP status codes.
var (
	// ErrNilDispatcher is returned when generation is requested without a scheduler.
	ErrNilDispatcher = errors.New("generation dispatcher cannot be nil")

	// ErrInvalidPercent indicates a grade outside [0, 1].
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidPercent = errors.New("grade percent must be within [0, 1]")
)
