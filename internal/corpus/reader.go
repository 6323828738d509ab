// Package corpus reads the JSONL site corpus into domain documents.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/logger"
)

// maxLineBytes bounds a single corpus line. Site descriptions are a few
// kilobytes; 1 MiB leaves generous headroom.
const maxLineBytes = 1 << 20

// record mirrors one corpus line on the wire.
type record struct {
	ID          int      `json:"id"`
	Site        string   `json:"site"`
	City        string   `json:"city"`
	Description string   `json:"description"`
	Period      string   `json:"period"`
	Status      string   `json:"status"`
	Coordinates string   `json:"coordinates"`
	Keywords    []string `json:"keywords"`
	Monuments   []string `json:"monuments"`
}

// ReadFile reads a JSONL corpus file. Malformed or invalid records are
// skipped and logged, not fatal; an unreadable file or a corpus with no
// valid records at all is a data integrity error.
// The second return value counts skipped records.
func ReadFile(path string) ([]domain.SourceDocument, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: opening corpus %s: %v", domain.ErrDataIntegrity, path, err)
	}
	defer f.Close()

	docs, skipped, err := Read(f)
	if err != nil {
		return nil, skipped, err
	}
	return docs, skipped, nil
}

// Read parses JSONL corpus records from r.
func Read(r io.Reader) ([]domain.SourceDocument, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []domain.SourceDocument
	skipped := 0

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("corpus line %d: malformed JSON, skipping: %v", lineNum, err)
			skipped++
			continue
		}

		doc := domain.SourceDocument{
			ID:          rec.ID,
			Site:        rec.Site,
			City:        rec.City,
			Description: rec.Description,
			Period:      rec.Period,
			Status:      rec.Status,
			Coordinates: rec.Coordinates,
			Keywords:    rec.Keywords,
			Monuments:   rec.Monuments,
		}

		if err := doc.Validate(); err != nil {
			logger.Warn("corpus line %d: %v, skipping", lineNum, err)
			skipped++
			continue
		}

		docs = append(docs, doc)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("%w: reading corpus: %v", domain.ErrDataIntegrity, err)
	}

	if len(docs) == 0 {
		return nil, skipped, fmt.Errorf("%w: corpus contains no valid documents", domain.ErrDataIntegrity)
	}

	return docs, skipped, nil
}

// RichText builds the enriched text that gets chunked and embedded for a
// document: the description framed by the site's identifying fields, so the
// embedding captures name, place and period alongside the prose.
func RichText(doc *domain.SourceDocument) string {
	parts := make([]string, 0, 8)

	parts = append(parts, fmt.Sprintf("Archaeological site: %s.", doc.Site))
	if doc.City != "" {
		parts = append(parts, fmt.Sprintf("Located in %s.", doc.City))
	}
	parts = append(parts, doc.Description)
	if doc.Period != "" {
		parts = append(parts, fmt.Sprintf("Historical period: %s.", doc.Period))
	}
	if doc.Status == "UNESCO" {
		parts = append(parts, "This site is inscribed on the UNESCO World Heritage List.")
	} else if doc.Status != "" {
		parts = append(parts, fmt.Sprintf("Status: %s.", doc.Status))
	}
	if doc.Coordinates != "" {
		parts = append(parts, fmt.Sprintf("GPS coordinates: %s.", doc.Coordinates))
	}
	if len(doc.Monuments) > 0 {
		parts = append(parts, fmt.Sprintf("Main monuments: %s.", strings.Join(doc.Monuments, ", ")))
	}

	return strings.Join(parts, " ")
}
