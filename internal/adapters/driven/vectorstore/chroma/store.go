// Package chroma provides a vector store adapter backed by a Chroma server,
// using its REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultCollection = "heritage_sites"
	DefaultTimeout    = 60 * time.Second
)

// apiPrefix is the Chroma REST API root.
const apiPrefix = "/api/v1"

// Config holds configuration for the Chroma store.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// Collection is the collection name (default: heritage_sites).
	Collection string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Store talks to a Chroma server. Collections are created with cosine
// distance so query distances map directly to relevance scores.
type Store struct {
	client     *http.Client
	baseURL    string
	collection string

	mu           sync.Mutex
	collectionID string
}

// collectionResponse is the Chroma collection create/get response.
type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// addRequest is the Chroma collection add request.
type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
	Documents  []string         `json:"documents"`
}

// queryRequest is the Chroma collection query request.
type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// queryResponse is the Chroma query response. Results are grouped per query
// embedding; we always send exactly one.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// NewStore creates a Chroma store client.
func NewStore(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
	}
}

// Recreate drops the collection if it exists and creates it fresh, so a
// subsequent Add never appends to stale contents.
func (s *Store) Recreate(ctx context.Context) error {
	s.mu.Lock()
	s.collectionID = ""
	s.mu.Unlock()

	// Deleting a missing collection is fine; Chroma answers 404 or 400.
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		s.baseURL+apiPrefix+"/collections/"+s.collection, http.NoBody)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	_, err = s.createCollection(ctx)
	return err
}

// createCollection creates (or fetches) the collection and caches its id.
func (s *Store) createCollection(ctx context.Context) (string, error) {
	body := map[string]any{
		"name":          s.collection,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
		"get_or_create": true,
	}

	var created collectionResponse
	if err := s.postJSON(ctx, apiPrefix+"/collections", body, &created); err != nil {
		return "", fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create collection %s: server returned no id", s.collection)
	}

	s.mu.Lock()
	s.collectionID = created.ID
	s.mu.Unlock()
	return created.ID, nil
}

// resolveCollection returns the cached collection id, resolving it on first
// use so queries work without a prior Recreate in the same process.
func (s *Store) resolveCollection(ctx context.Context) (string, error) {
	s.mu.Lock()
	id := s.collectionID
	s.mu.Unlock()
	if id != "" {
		return id, nil
	}
	return s.createCollection(ctx)
}

// Add stores chunks with their embeddings. Chunk ids are deterministic, so
// re-adding after a Recreate reproduces the same collection.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	id, err := s.resolveCollection(ctx)
	if err != nil {
		return err
	}

	req := addRequest{
		IDs:        make([]string, len(chunks)),
		Embeddings: embeddings,
		Metadatas:  make([]map[string]any, len(chunks)),
		Documents:  make([]string, len(chunks)),
	}
	for i, c := range chunks {
		req.IDs[i] = c.ID
		req.Documents[i] = c.Text
		req.Metadatas[i] = metadataToMap(c.Metadata)
	}

	if err := s.postJSON(ctx, apiPrefix+"/collections/"+id+"/add", req, nil); err != nil {
		return fmt.Errorf("add %d chunks: %w", len(chunks), err)
	}
	return nil
}

// Query returns the topK nearest chunks for an embedding, nearest first.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]driven.VectorHit, error) {
	id, err := s.resolveCollection(ctx)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp queryResponse
	if err := s.postJSON(ctx, apiPrefix+"/collections/"+id+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, 0, len(resp.IDs[0]))
	for i, chunkID := range resp.IDs[0] {
		hit := driven.VectorHit{ChunkID: chunkID}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = metadataFromMap(resp.Metadatas[0][i])
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	id, err := s.resolveCollection(ctx)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+apiPrefix+"/collections/"+id+"/count", http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create count request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return count, nil
}

// Ping validates the server is reachable via the heartbeat endpoint.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+apiPrefix+"/heartbeat", http.NoBody)
	if err != nil {
		return fmt.Errorf("chroma: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chroma: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// postJSON posts a JSON body and optionally decodes a JSON response.
func (s *Store) postJSON(ctx context.Context, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("chroma error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// metadataToMap flattens chunk metadata into Chroma's scalar metadata form.
func metadataToMap(m domain.ChunkMetadata) map[string]any {
	out := map[string]any{
		"document_id": m.DocumentID,
		"site":        m.Site,
	}
	if m.City != "" {
		out["city"] = m.City
	}
	if m.Period != "" {
		out["period"] = m.Period
	}
	if m.Status != "" {
		out["status"] = m.Status
	}
	if m.Coordinates != "" {
		out["coordinates"] = m.Coordinates
	}
	if m.Keywords != "" {
		out["keywords"] = m.Keywords
	}
	return out
}

// metadataFromMap rebuilds chunk metadata from a Chroma metadata object.
// Numbers arrive as float64 after JSON decoding.
func metadataFromMap(m map[string]any) domain.ChunkMetadata {
	var out domain.ChunkMetadata
	if v, ok := m["document_id"].(float64); ok {
		out.DocumentID = int(v)
	}
	if v, ok := m["site"].(string); ok {
		out.Site = v
	}
	if v, ok := m["city"].(string); ok {
		out.City = v
	}
	if v, ok := m["period"].(string); ok {
		out.Period = v
	}
	if v, ok := m["status"].(string); ok {
		out.Status = v
	}
	if v, ok := m["coordinates"].(string); ok {
		out.Coordinates = v
	}
	if v, ok := m["keywords"].(string); ok {
		out.Keywords = v
	}
	return out
}
