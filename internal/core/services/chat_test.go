package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

func testChatConfig() ChatConfig {
	return ChatConfig{
		MaxInputLength:     500,
		MaxHistoryMessages: 6,
		Temperature:        0.7,
		TopP:               0.9,
		MaxTokens:          500,
	}
}

func newTestChat(store *mockVectorStore, llm *mockLLMService) *ChatService {
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	retriever := NewRetrieverService(embedding, store, 500, 0)
	return NewChatService(retriever, llm, testChatConfig())
}

func TestAnswer_BuildsPromptFromRetrievedContext(t *testing.T) {
	store := &mockVectorStore{hits: []driven.VectorHit{
		{
			ChunkID: "1::chunk_0",
			Text:    "The punic ports of Carthage were rebuilt by the Romans.",
			Metadata: domain.ChunkMetadata{
				DocumentID: 1, Site: "Carthage", City: "Tunis", Period: "Punic",
			},
			Distance: 0.1,
		},
	}}
	llm := &mockLLMService{reply: "The ports were rebuilt."}
	svc := newTestChat(store, llm)

	answer, err := svc.Answer(context.Background(), "What about the ports?", nil, 5)
	require.NoError(t, err)

	assert.Equal(t, "The ports were rebuilt.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, 1, answer.Sources[0].DocumentID)
	assert.Equal(t, "Carthage", answer.Sources[0].Site)
	assert.InDelta(t, 0.9, answer.Sources[0].Relevance, 1e-9)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "ONLY from the information")

	user := llm.messages[1]
	assert.Equal(t, "user", user.Role)
	assert.Contains(t, user.Content, "[Carthage, Tunis - Punic]")
	assert.Contains(t, user.Content, "rebuilt by the Romans")
	assert.Contains(t, user.Content, "QUESTION: What about the ports?")

	assert.Equal(t, 0.7, llm.opts.Temperature)
	assert.Equal(t, 0.9, llm.opts.TopP)
	assert.Equal(t, 500, llm.opts.MaxTokens)
}

func TestAnswer_EmptyQueryShortCircuits(t *testing.T) {
	store := &mockVectorStore{}
	llm := &mockLLMService{reply: "never"}
	svc := newTestChat(store, llm)

	_, err := svc.Answer(context.Background(), "   ", nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.queryCalls, "no collaborator may run for invalid input")
	assert.Zero(t, llm.chatCalls)
}

func TestAnswer_OverLengthQueryShortCircuits(t *testing.T) {
	store := &mockVectorStore{}
	llm := &mockLLMService{reply: "never"}
	svc := newTestChat(store, llm)

	long := strings.Repeat("x", 501)
	_, err := svc.Answer(context.Background(), long, nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.queryCalls)
	assert.Zero(t, llm.chatCalls)
}

func TestAnswer_EmptyRetrievalStillGenerates(t *testing.T) {
	store := &mockVectorStore{}
	llm := &mockLLMService{reply: "I do not have that information in my knowledge base."}
	svc := newTestChat(store, llm)

	answer, err := svc.Answer(context.Background(), "Tell me about Atlantis", nil, 5)
	require.NoError(t, err)

	assert.NotEmpty(t, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 1, llm.chatCalls)
	assert.Contains(t, llm.messages[1].Content, "(no matching documents)")
}

func TestAnswer_TruncatesHistory(t *testing.T) {
	store := &mockVectorStore{}
	llm := &mockLLMService{reply: "ok"}
	svc := newTestChat(store, llm)

	history := make([]domain.ConversationTurn, 10)
	for i := range history {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		history[i] = domain.ConversationTurn{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}

	_, err := svc.Answer(context.Background(), "next question", history, 5)
	require.NoError(t, err)

	// system + 6 most recent history turns + user message.
	require.Len(t, llm.messages, 8)
	assert.Equal(t, "turn 4", llm.messages[1].Content)
	assert.Equal(t, "turn 9", llm.messages[6].Content)
}

func TestAnswer_DeduplicatesSourcesByDocument(t *testing.T) {
	store := &mockVectorStore{hits: []driven.VectorHit{
		{ChunkID: "1::chunk_0", Metadata: domain.ChunkMetadata{DocumentID: 1, Site: "Carthage"}, Distance: 0.1},
		{ChunkID: "1::chunk_1", Metadata: domain.ChunkMetadata{DocumentID: 1, Site: "Carthage"}, Distance: 0.2},
		{ChunkID: "2::chunk_0", Metadata: domain.ChunkMetadata{DocumentID: 2, Site: "Dougga"}, Distance: 0.3},
	}}
	llm := &mockLLMService{reply: "ok"}
	svc := newTestChat(store, llm)

	answer, err := svc.Answer(context.Background(), "sites", nil, 5)
	require.NoError(t, err)

	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "Carthage", answer.Sources[0].Site)
	assert.Equal(t, "Dougga", answer.Sources[1].Site)
	// First occurrence wins: the dedup keeps chunk_0's relevance.
	assert.InDelta(t, 0.9, answer.Sources[0].Relevance, 1e-9)
}

func TestAnswer_GenerationFailureMapsToUnavailable(t *testing.T) {
	store := &mockVectorStore{}
	llm := &mockLLMService{chatErr: assert.AnError}
	svc := newTestChat(store, llm)

	_, err := svc.Answer(context.Background(), "question", nil, 5)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Equal(t, 1, llm.chatCalls, "a single attempt per call")
}

func TestAnswer_CancellationPassesThrough(t *testing.T) {
	store := &mockVectorStore{}
	llm := &mockLLMService{chatErr: context.Canceled}
	svc := newTestChat(store, llm)

	_, err := svc.Answer(context.Background(), "question", nil, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestAnswerStream_DeliversDeltas(t *testing.T) {
	store := &mockVectorStore{hits: []driven.VectorHit{
		{ChunkID: "1::chunk_0", Metadata: domain.ChunkMetadata{DocumentID: 1, Site: "Carthage"}, Distance: 0.1},
	}}
	llm := &mockLLMService{deltas: []string{"The ", "ports ", "remain."}}
	svc := newTestChat(store, llm)

	var got []string
	answer, err := svc.AnswerStream(context.Background(), "ports?", nil, 5,
		func(delta string) error {
			got = append(got, delta)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"The ", "ports ", "remain."}, got)
	assert.Equal(t, "The ports remain.", answer.Text)
	require.Len(t, answer.Sources, 1)
}

func TestNewChatService_DefaultsHistoryBudget(t *testing.T) {
	svc := NewChatService(nil, &mockLLMService{}, ChatConfig{})
	assert.Equal(t, 6, svc.cfg.MaxHistoryMessages)
}
