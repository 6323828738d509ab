package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// stubRetrieverService implements driving.RetrieverService.
type stubRetrieverService struct {
	chunks []domain.RetrievedChunk
	err    error
	query  string
	topK   int
}

func (s *stubRetrieverService) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	s.query = query
	s.topK = topK
	return s.chunks, s.err
}

func setupRetriever(t *testing.T) *stubRetrieverService {
	t.Helper()

	prev := retrieverService
	prevTopK := defaultTopK
	stub := &stubRetrieverService{}
	retrieverService = stub
	defaultTopK = 5
	t.Cleanup(func() {
		retrieverService = prev
		defaultTopK = prevTopK
	})
	return stub
}

func TestRetrieveCmd_PrintsPassages(t *testing.T) {
	stub := setupRetriever(t)
	stub.chunks = []domain.RetrievedChunk{
		{
			ChunkID:   "1::chunk_0",
			Text:      "The punic ports survive south of the Byrsa hill.",
			Metadata:  domain.ChunkMetadata{DocumentID: 1, Site: "Carthage", Period: "Punic"},
			Relevance: 0.91,
		},
	}

	out, err := execute(t, "retrieve", "punic ports")
	require.NoError(t, err)

	assert.Equal(t, "punic ports", stub.query)
	assert.Equal(t, 5, stub.topK)
	assert.Contains(t, out, "Carthage (0.91)")
	assert.Contains(t, out, "Period: Punic")
	assert.Contains(t, out, "Byrsa hill")
}

func TestRetrieveCmd_TopKFlag(t *testing.T) {
	stub := setupRetriever(t)
	defer func() { retrieveTopK = 0 }()

	_, err := execute(t, "retrieve", "--top-k", "3", "ports")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.topK)
}

func TestRetrieveCmd_JSONOutput(t *testing.T) {
	stub := setupRetriever(t)
	defer func() { retrieveJSON = false }()
	stub.chunks = []domain.RetrievedChunk{
		{ChunkID: "2::chunk_1", Text: "Roman capitol.", Metadata: domain.ChunkMetadata{Site: "Dougga"}},
	}

	out, err := execute(t, "retrieve", "--json", "capitol")
	require.NoError(t, err)
	assert.Contains(t, out, `"ChunkID": "2::chunk_1"`)
	assert.Contains(t, out, "Dougga")
}

func TestRetrieveCmd_NoResults(t *testing.T) {
	setupRetriever(t)

	out, err := execute(t, "retrieve", "unknown site")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching passages.")
}

func TestRetrieveCmd_Failure(t *testing.T) {
	stub := setupRetriever(t)
	stub.err = domain.ErrEmbeddingUnavailable

	_, err := execute(t, "retrieve", "ports")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "abcde...", snippet("abcdefgh", 5))
}
