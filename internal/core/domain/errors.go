package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSourceNotFound indicates the input directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// Embedding Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingFailed indicates the embedding provider returned an error.
	// The provider's error is wrapped.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmbeddingCountMismatch indicates a batch returned a different number
	// of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrNonFiniteValue indicates a vector contained NaN or Inf.
	ErrNonFiniteValue = errors.New("non-finite value")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")
)
