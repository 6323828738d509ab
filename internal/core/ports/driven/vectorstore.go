package driven

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// VectorStore holds embedded chunks in a named collection and answers
// similarity queries. Embedding happens outside the store: callers supply
// vectors for both inserts and queries.
type VectorStore interface {
	// Recreate drops the collection if it exists and creates it empty.
	// Ingestion calls this first so re-running against the same corpus is
	// idempotent at the collection level.
	Recreate(ctx context.Context) error

	// Add inserts chunks with their embeddings in one batch.
	Add(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error

	// Query returns the topK nearest chunks to the query embedding,
	// with raw distances as reported by the store.
	Query(ctx context.Context, embedding []float32, topK int) ([]VectorHit, error)

	// Count returns the number of chunks in the collection.
	// A missing collection counts as zero.
	Count(ctx context.Context) (int, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit is a single similarity result from the store.
type VectorHit struct {
	// ChunkID is the matched chunk's identifier.
	ChunkID string

	// Text is the stored chunk content.
	Text string

	// Metadata is the stored chunk metadata.
	Metadata domain.ChunkMetadata

	// Distance is the raw cosine distance (0 = identical).
	Distance float64
}
