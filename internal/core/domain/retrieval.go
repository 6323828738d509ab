package domain

// RetrievedChunk is a chunk returned from the vector store for a query,
// shaped for prompt assembly.
type RetrievedChunk struct {
	// ChunkID is the vector-store identifier of the chunk.
	ChunkID string

	// Text is the chunk content.
	Text string

	// Metadata is the chunk's source-document metadata.
	Metadata ChunkMetadata

	// Relevance is the normalized similarity score in [0, 1],
	// computed as 1 - cosine distance, clamped.
	Relevance float64
}

// Answer is the orchestrator's response to a query.
type Answer struct {
	// Text is the generated response, returned verbatim from the LLM.
	Text string

	// Sources lists the corpus documents whose chunks were used to build
	// the prompt, in retrieval order, deduplicated by document.
	Sources []SourceRef
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// DocumentsProcessed counts corpus records that produced chunks.
	DocumentsProcessed int

	// ChunksCreated counts chunks added to the vector store.
	ChunksCreated int

	// RecordsSkipped counts malformed or invalid corpus records.
	RecordsSkipped int
}
