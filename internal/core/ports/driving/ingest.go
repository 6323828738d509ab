package driving

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// IngestService loads a corpus into the vector store.
type IngestService interface {
	// Ingest reads the JSONL corpus at corpusPath, chunks every valid
	// document and replaces the vector-store collection contents.
	Ingest(ctx context.Context, corpusPath string) (domain.IngestReport, error)
}
