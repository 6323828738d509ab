package domain

import (
	"fmt"
	"strings"
)

// SourceDocument is one record of the archaeological-site corpus.
// It is the canonical representation of a corpus line after parsing;
// the corpus file remains the source of truth.
type SourceDocument struct {
	// ID is the unique corpus identifier for the site record.
	ID int

	// Site is the site name (e.g. "Carthage").
	Site string

	// City is the modern city or region the site belongs to.
	City string

	// Description is the main descriptive text. This is what gets chunked.
	Description string

	// Period is the historical period (e.g. "Punique, Romaine").
	Period string

	// Status is the heritage status (e.g. "UNESCO").
	Status string

	// Coordinates is an optional GPS coordinate string.
	Coordinates string

	// Keywords are optional search keywords attached to the record.
	Keywords []string

	// Monuments are optional notable monuments within the site.
	Monuments []string
}

// Validate checks that the minimum required corpus fields are present.
func (d *SourceDocument) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("%w: document id missing or non-positive", ErrInvalidInput)
	}
	if d.Site == "" {
		return fmt.Errorf("%w: document %d has no site name", ErrInvalidInput, d.ID)
	}
	if d.Description == "" {
		return fmt.Errorf("%w: document %d has no description", ErrInvalidInput, d.ID)
	}
	return nil
}

// Chunk is a bounded excerpt of a SourceDocument used as a retrieval unit.
// Chunks are immutable once created and are owned by the vector store after
// ingestion; this pipeline does not retain them.
type Chunk struct {
	// ID is the deterministic chunk identifier ("{docID}::chunk_{n}").
	ID string

	// DocumentID links back to the SourceDocument that produced this chunk.
	DocumentID int

	// Position is the ordinal position within the document.
	Position int

	// Text is the chunk content.
	Text string

	// Metadata carries the non-text fields of the source document.
	Metadata ChunkMetadata
}

// ChunkMetadata is the copy of a SourceDocument's non-text fields that
// travels with every chunk into the vector store.
type ChunkMetadata struct {
	DocumentID  int    `json:"document_id"`
	Site        string `json:"site"`
	City        string `json:"city"`
	Period      string `json:"period"`
	Status      string `json:"status"`
	Coordinates string `json:"coordinates"`
	Keywords    string `json:"keywords"`
}

// ChunkID builds the deterministic chunk identifier used in the vector store.
func ChunkID(documentID, position int) string {
	return fmt.Sprintf("%d::chunk_%d", documentID, position)
}

// MetadataFor extracts chunk metadata from a source document.
func MetadataFor(doc *SourceDocument) ChunkMetadata {
	return ChunkMetadata{
		DocumentID:  doc.ID,
		Site:        doc.Site,
		City:        doc.City,
		Period:      doc.Period,
		Status:      doc.Status,
		Coordinates: doc.Coordinates,
		Keywords:    strings.Join(doc.Keywords, ", "),
	}
}
