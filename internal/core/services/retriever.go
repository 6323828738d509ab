package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driving"
	"github.com/patrimonia-labs/sitechat/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrieverService = (*RetrieverService)(nil)

// DefaultTopK is used when the caller passes a non-positive topK.
const DefaultTopK = 5

// RetrieverService finds corpus chunks relevant to a query.
// Embedding and similarity search are delegated to the collaborators; this
// service validates input, invokes them and shapes the results.
type RetrieverService struct {
	embedding driven.EmbeddingService
	store     driven.VectorStore

	maxInputLength int
	minRelevance   float64
}

// NewRetrieverService creates a retriever. maxInputLength caps query length;
// minRelevance discards hits scoring below it (0 keeps everything).
func NewRetrieverService(
	embedding driven.EmbeddingService,
	store driven.VectorStore,
	maxInputLength int,
	minRelevance float64,
) *RetrieverService {
	return &RetrieverService{
		embedding:      embedding,
		store:          store,
		maxInputLength: maxInputLength,
		minRelevance:   minRelevance,
	}
}

// SanitizeQuery normalises user input: trims, collapses whitespace, strips
// NUL bytes and truncates to maxLength bytes without splitting a word.
func SanitizeQuery(query string, maxLength int) string {
	query = strings.ReplaceAll(query, "\x00", "")
	query = strings.Join(strings.Fields(query), " ")
	if maxLength > 0 && len(query) > maxLength {
		query = query[:maxLength]
		if i := strings.LastIndexByte(query, ' '); i > 0 {
			query = query[:i]
		}
	}
	return query
}

// Retrieve returns at most topK chunks ordered by descending relevance.
// An empty collection, or no hit clearing the relevance threshold, yields an
// empty slice and no error.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieval")

	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	query = SanitizeQuery(query, s.maxInputLength)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger.Debug("Query: %q, topK: %d", query, topK)

	embedding, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.store.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection: %v", domain.ErrVectorStoreUnavailable, err)
	}
	logger.Debug("Vector store: %d hits", len(hits))

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		relevance := relevanceFromDistance(hit.Distance)
		if s.minRelevance > 0 && relevance < s.minRelevance {
			continue
		}
		results = append(results, domain.RetrievedChunk{
			ChunkID:   hit.ChunkID,
			Text:      hit.Text,
			Metadata:  hit.Metadata,
			Relevance: relevance,
		})
	}

	// The store returns hits nearest-first already; keep the ordering
	// explicit since callers rely on it.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Retrieved %d chunks", len(results))
	return results, nil
}

// relevanceFromDistance maps a cosine distance to a relevance score in
// [0, 1]: 1 - distance, clamped.
func relevanceFromDistance(distance float64) float64 {
	r := 1 - distance
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
