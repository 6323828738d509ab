package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrimonia-labs/sitechat/internal/chunker"
	"github.com/patrimonia-labs/sitechat/internal/corpus"
	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driving"
	"github.com/patrimonia-labs/sitechat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// addBatchSize is how many chunks go to the vector store per Add call.
const addBatchSize = 100

// IngestService loads the JSONL corpus into the vector store.
type IngestService struct {
	splitter  *chunker.Splitter
	embedding driven.EmbeddingService
	store     driven.VectorStore
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	splitter *chunker.Splitter,
	embedding driven.EmbeddingService,
	store driven.VectorStore,
) *IngestService {
	return &IngestService{
		splitter:  splitter,
		embedding: embedding,
		store:     store,
	}
}

// Ingest reads the corpus, chunks and embeds every valid document, and
// replaces the vector-store collection contents. Re-running against the same
// corpus yields the same collection: the target collection is recreated
// before anything is added.
func (s *IngestService) Ingest(ctx context.Context, corpusPath string) (domain.IngestReport, error) {
	logger.Section("Ingestion")
	logger.Debug("Corpus: %s", corpusPath)

	var report domain.IngestReport

	if s.embedding == nil {
		return report, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return report, domain.ErrVectorStoreUnavailable
	}

	docs, skipped, err := corpus.ReadFile(corpusPath)
	if err != nil {
		return report, err
	}
	report.RecordsSkipped = skipped
	logger.Info("Corpus: %d valid documents, %d skipped", len(docs), skipped)

	// Recreate first so a re-run never appends duplicates.
	if err := s.store.Recreate(ctx); err != nil {
		return report, fmt.Errorf("%w: recreating collection: %v", domain.ErrVectorStoreUnavailable, err)
	}

	var batch []domain.Chunk
	for i := range docs {
		doc := &docs[i]

		texts := s.splitter.Split(corpus.RichText(doc))
		if len(texts) == 0 {
			logger.Warn("Document %d produced no chunks, skipping", doc.ID)
			report.RecordsSkipped++
			continue
		}

		meta := domain.MetadataFor(doc)
		for pos, text := range texts {
			batch = append(batch, domain.Chunk{
				ID:         domain.ChunkID(doc.ID, pos),
				DocumentID: doc.ID,
				Position:   pos,
				Text:       text,
				Metadata:   meta,
			})
		}

		report.DocumentsProcessed++
		report.ChunksCreated += len(texts)

		if len(batch) >= addBatchSize {
			if err := s.flush(ctx, batch); err != nil {
				return report, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.flush(ctx, batch); err != nil {
			return report, err
		}
	}

	logger.Info("Ingestion complete: %d documents, %d chunks",
		report.DocumentsProcessed, report.ChunksCreated)
	return report, nil
}

// flush embeds a batch of chunks and adds them to the vector store.
func (s *IngestService) flush(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Text
	}

	embeddings, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: embedding batch: %v", domain.ErrEmbeddingUnavailable, err)
	}

	if err := s.store.Add(ctx, batch, embeddings); err != nil {
		return fmt.Errorf("%w: adding chunks: %v", domain.ErrVectorStoreUnavailable, err)
	}

	logger.Debug("Flushed %d chunks", len(batch))
	return nil
}
