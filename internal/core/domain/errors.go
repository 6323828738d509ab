package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input: an empty or
	// over-length query, or a corpus record missing required fields.
	// Recovered locally; never fatal.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is unreachable.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrGenerationUnavailable indicates the generation endpoint is
	// unreachable or timed out. Surfaced to the caller so the UI can offer
	// a retry; the orchestrator itself makes a single attempt.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrDataIntegrity indicates the corpus is entirely unreadable or chunk
	// metadata is missing required fields. Fatal to an ingestion run.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrPersistence indicates a history store read or write failed.
	// Conversation state is left unmodified rather than partially written.
	ErrPersistence = errors.New("persistence error")
)
