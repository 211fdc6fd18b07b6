package domain

import "errors"

// Domain errors represent pipeline failures.
// Callers branch on them with errors.Is; adapters wrap the underlying cause.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a document format with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Pipeline Errors.

	// ErrExtractionFailed indicates extraction produced no usable text.
	// Unsupported, corrupt, oversized or empty files all report it.
	// Non-fatal: the document contributes zero fragments.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingFailed indicates the embedding call errored during insert or query.
	// The enclosing operation is aborted; nothing is partially stored.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrQueryFailed indicates an index query could not be answered.
	// It is never collapsed into an empty result.
	ErrQueryFailed = errors.New("index query failed")

	// ErrStorageFailed indicates the vector store rejected a write or clear.
	ErrStorageFailed = errors.New("index storage failed")

	// ErrGenerationFailed indicates the language model errored while answering.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIndexUnavailable indicates index storage cannot be opened or created.
	// Fatal at startup.
	ErrIndexUnavailable = errors.New("index unavailable")

	// Service Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
