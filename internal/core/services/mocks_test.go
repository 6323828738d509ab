package services

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding  []float32
	embedErr   error
	embedCalls int
	batchTexts [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batchTexts = append(m.batchTexts, texts)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.embedding) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	hits        []driven.VectorHit
	queryErr    error
	addErr      error
	recreateErr error

	recreates  int
	queryCalls int
	added      []domain.Chunk
}

func (m *mockVectorStore) Recreate(_ context.Context) error {
	m.recreates++
	return m.recreateErr
}

func (m *mockVectorStore) Add(_ context.Context, chunks []domain.Chunk, _ [][]float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks...)
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ []float32, topK int) ([]driven.VectorHit, error) {
	m.queryCalls++
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) { return len(m.added), nil }
func (m *mockVectorStore) Ping(_ context.Context) error         { return nil }
func (m *mockVectorStore) Close() error                         { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply     string
	deltas    []string
	chatErr   error
	chatCalls int
	messages  []driven.ChatMessage
	opts      driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.messages = messages
	m.opts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.reply, nil
}

func (m *mockLLMService) ChatStream(
	_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions, onDelta func(string) error,
) (string, error) {
	m.chatCalls++
	m.messages = messages
	m.opts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	full := ""
	for _, d := range m.deltas {
		if err := onDelta(d); err != nil {
			return full, err
		}
		full += d
	}
	return full, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	conversations map[string]string
	turns         map[string][]domain.ConversationTurn
	nextID        string
	appendErr     error
}

func newMockHistoryStore() *mockHistoryStore {
	return &mockHistoryStore{
		conversations: make(map[string]string),
		turns:         make(map[string][]domain.ConversationTurn),
		nextID:        "conv-1",
	}
}

func (m *mockHistoryStore) CreateConversation(_ context.Context, title string) (string, error) {
	id := m.nextID
	m.conversations[id] = title
	return id, nil
}

func (m *mockHistoryStore) AppendTurn(_ context.Context, id string, turn domain.ConversationTurn) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.turns[id] = append(m.turns[id], turn)
	return nil
}

func (m *mockHistoryStore) GetTurns(_ context.Context, id string) ([]domain.ConversationTurn, error) {
	if _, ok := m.conversations[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return m.turns[id], nil
}

func (m *mockHistoryStore) ListConversations(_ context.Context, _ string) ([]domain.ConversationSummary, error) {
	var out []domain.ConversationSummary
	for id, title := range m.conversations {
		out = append(out, domain.ConversationSummary{ID: id, Title: title, TurnCount: len(m.turns[id])})
	}
	return out, nil
}

func (m *mockHistoryStore) RenameConversation(_ context.Context, id, title string) error {
	if _, ok := m.conversations[id]; !ok {
		return domain.ErrNotFound
	}
	m.conversations[id] = title
	return nil
}

func (m *mockHistoryStore) DeleteConversation(_ context.Context, id string) error {
	delete(m.conversations, id)
	delete(m.turns, id)
	return nil
}

func (m *mockHistoryStore) Stats(_ context.Context) (driven.HistoryStats, error) {
	turns := 0
	for _, t := range m.turns {
		turns += len(t)
	}
	return driven.HistoryStats{Conversations: len(m.conversations), Turns: turns}, nil
}

func (m *mockHistoryStore) Close() error { return nil }
