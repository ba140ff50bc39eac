package domain

import "errors"

var (
	// ErrValidation signals malformed or out-of-range request parameters.
	// Raised before any model or retrieval call is made.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientContent signals that the owner has no usable retrievable content.
	ErrInsufficientContent = errors.New("insufficient document content")
	// ErrModelFailure signals that the language model failed or returned unusable output.
	ErrModelFailure = errors.New("model failure")
	// ErrExternalService signals an unavailable web-search or file-write capability.
	ErrExternalService = errors.New("external service unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
