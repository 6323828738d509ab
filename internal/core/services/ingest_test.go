package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimonia-labs/sitechat/internal/chunker"
	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// writeCorpus writes JSONL lines to a temp file and returns its path.
func writeCorpus(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600)
	require.NoError(t, err)
	return path
}

// description returns an n-word description.
func description(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i+1)
	}
	return strings.Join(words, " ")
}

func newTestIngest(store *mockVectorStore) *IngestService {
	splitter := chunker.New(
		chunker.WithTargetWords(200),
		chunker.WithOverlapWords(30),
		chunker.WithMinWords(15),
	)
	embedding := &mockEmbeddingService{embedding: []float32{0.1, 0.2, 0.3}}
	return NewIngestService(splitter, embedding, store)
}

func TestIngest_SingleShortDocument(t *testing.T) {
	// A 150-word description with target 200 yields exactly one chunk.
	store := &mockVectorStore{}
	svc := newTestIngest(store)

	path := writeCorpus(t,
		fmt.Sprintf(`{"id":1,"site":"Carthage","description":"%s"}`, description(150)))

	report, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DocumentsProcessed)
	assert.Equal(t, 1, report.ChunksCreated)
	assert.Equal(t, 0, report.RecordsSkipped)

	require.Len(t, store.added, 1)
	assert.Equal(t, "1::chunk_0", store.added[0].ID)
	assert.Equal(t, 1, store.added[0].DocumentID)
	assert.Contains(t, store.added[0].Text, "word150")
	assert.Equal(t, "Carthage", store.added[0].Metadata.Site)
}

func TestIngest_LongDocumentProducesOverlappingChunks(t *testing.T) {
	store := &mockVectorStore{}
	svc := newTestIngest(store)

	// 500 description words plus the rich-text framing still spans 3 windows.
	path := writeCorpus(t,
		fmt.Sprintf(`{"id":7,"site":"Dougga","city":"Téboursouk","description":"%s"}`, description(500)))

	report, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DocumentsProcessed)
	assert.Equal(t, 3, report.ChunksCreated)
	require.Len(t, store.added, 3)

	for i, c := range store.added {
		assert.Equal(t, domain.ChunkID(7, i), c.ID)
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "Dougga", c.Metadata.Site)
	}
}

func TestIngest_SkipsMalformedAndInvalidRecords(t *testing.T) {
	store := &mockVectorStore{}
	svc := newTestIngest(store)

	path := writeCorpus(t,
		`{"id":1,"site":"Carthage","description":"`+description(40)+`"}`,
		`{this is not json`,
		`{"id":2,"site":"","description":"missing the site name"}`,
		`{"id":3,"description":"missing site entirely"}`,
		`{"id":4,"site":"Utique","description":"`+description(30)+`"}`,
	)

	report, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, report.DocumentsProcessed)
	assert.Equal(t, 3, report.RecordsSkipped)
}

func TestIngest_EmptyCorpusFails(t *testing.T) {
	store := &mockVectorStore{}
	svc := newTestIngest(store)

	path := writeCorpus(t, `{broken`)

	_, err := svc.Ingest(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.Zero(t, store.recreates, "collection must not be touched for a dead corpus")
}

func TestIngest_MissingFileFails(t *testing.T) {
	store := &mockVectorStore{}
	svc := newTestIngest(store)

	_, err := svc.Ingest(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestIngest_RecreatesCollectionFirst(t *testing.T) {
	// Running twice replaces the collection instead of appending duplicates.
	store := &mockVectorStore{}
	svc := newTestIngest(store)

	path := writeCorpus(t,
		fmt.Sprintf(`{"id":1,"site":"Carthage","description":"%s"}`, description(60)))

	first, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, store.recreates)
	assert.Equal(t, first.ChunksCreated, second.ChunksCreated)
}

func TestIngest_RecreateFailureSurfacesAsStoreUnavailable(t *testing.T) {
	store := &mockVectorStore{recreateErr: assert.AnError}
	svc := newTestIngest(store)

	path := writeCorpus(t,
		fmt.Sprintf(`{"id":1,"site":"Carthage","description":"%s"}`, description(60)))

	_, err := svc.Ingest(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestIngest_EmbeddingFailureSurfaces(t *testing.T) {
	store := &mockVectorStore{}
	splitter := chunker.New()
	embedding := &mockEmbeddingService{embedErr: assert.AnError}
	svc := NewIngestService(splitter, embedding, store)

	path := writeCorpus(t,
		fmt.Sprintf(`{"id":1,"site":"Carthage","description":"%s"}`, description(60)))

	_, err := svc.Ingest(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Empty(t, store.added)
}
