package driving

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// RetrieverService finds corpus chunks relevant to a query.
type RetrieverService interface {
	// Retrieve returns at most topK chunks ordered by descending relevance.
	// An empty collection yields an empty slice, not an error.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}
