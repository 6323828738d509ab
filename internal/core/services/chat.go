package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driving"
	"github.com/patrimonia-labs/sitechat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// systemPrompt is the fixed instruction prepended to every conversation.
const systemPrompt = `You are an expert assistant on archaeological heritage sites.

RULES:
1. Answer ONLY from the information in the provided CONTEXT.
2. If the information is not in the context, say clearly: "I do not have that information in my knowledge base."
3. Never invent or assume facts.
4. Answer clearly and professionally, with paragraphs where useful.
5. Mention the sites you draw information from.
6. Provide coordinates or locations when asked and available.`

// ChatConfig holds the orchestrator's fixed parameters.
type ChatConfig struct {
	// MaxInputLength caps query length in bytes.
	MaxInputLength int

	// MaxHistoryMessages bounds how many history turns enter the prompt.
	MaxHistoryMessages int

	// Temperature, TopP and MaxTokens are the fixed decoding parameters.
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ChatService assembles prompts from retrieved context and history, and
// sends them to the generation collaborator. It performs a single generation
// attempt per call: generation is user-triggered and retries belong to the UI.
type ChatService struct {
	retriever driving.RetrieverService
	llm       driven.LLMService
	cfg       ChatConfig
}

// NewChatService creates the conversation orchestrator.
func NewChatService(retriever driving.RetrieverService, llm driven.LLMService, cfg ChatConfig) *ChatService {
	if cfg.MaxHistoryMessages <= 0 {
		cfg.MaxHistoryMessages = 6
	}
	return &ChatService{
		retriever: retriever,
		llm:       llm,
		cfg:       cfg,
	}
}

// Answer retrieves context, builds the prompt and returns the generated
// response with source attributions in retrieval order.
func (s *ChatService) Answer(
	ctx context.Context, query string, history []domain.ConversationTurn, topK int,
) (domain.Answer, error) {
	return s.answer(ctx, query, history, topK, nil)
}

// AnswerStream behaves like Answer but delivers fragments through onDelta.
func (s *ChatService) AnswerStream(
	ctx context.Context, query string, history []domain.ConversationTurn, topK int,
	onDelta func(string) error,
) (domain.Answer, error) {
	return s.answer(ctx, query, history, topK, onDelta)
}

func (s *ChatService) answer(
	ctx context.Context, query string, history []domain.ConversationTurn, topK int,
	onDelta func(string) error,
) (domain.Answer, error) {
	logger.Section("Answer")

	// Validate before any collaborator is touched.
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if s.cfg.MaxInputLength > 0 && len(trimmed) > s.cfg.MaxInputLength {
		return domain.Answer{}, fmt.Errorf("%w: query exceeds %d characters",
			domain.ErrInvalidInput, s.cfg.MaxInputLength)
	}
	if s.llm == nil {
		return domain.Answer{}, domain.ErrGenerationUnavailable
	}
	if s.retriever == nil {
		return domain.Answer{}, domain.ErrVectorStoreUnavailable
	}

	chunks, err := s.retriever.Retrieve(ctx, trimmed, topK)
	if err != nil {
		return domain.Answer{}, err
	}
	// An empty collection is not a failure: generation proceeds without
	// retrieved context and the model answers from the rules alone.
	if len(chunks) == 0 {
		logger.Info("No context retrieved; generating without context")
	}

	messages := s.buildMessages(trimmed, history, chunks)
	opts := driven.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
	}

	var text string
	if onDelta != nil {
		text, err = s.llm.ChatStream(ctx, messages, opts, onDelta)
	} else {
		text, err = s.llm.Chat(ctx, messages, opts)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.Answer{}, err
		}
		// Single attempt per call; surface so the UI can offer a retry.
		return domain.Answer{}, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	return domain.Answer{
		Text:    text,
		Sources: sourcesFromChunks(chunks),
	}, nil
}

// buildMessages assembles the deterministic prompt: system instruction,
// truncated role-labeled history, then the user message carrying the
// retrieved context and the query.
func (s *ChatService) buildMessages(
	query string, history []domain.ConversationTurn, chunks []domain.RetrievedChunk,
) []driven.ChatMessage {
	messages := []driven.ChatMessage{{Role: "system", Content: systemPrompt}}

	for _, turn := range truncateHistory(history, s.cfg.MaxHistoryMessages) {
		messages = append(messages, driven.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: userMessage(query, chunks),
	})

	return messages
}

// truncateHistory keeps the most recent max turns, preserving order.
func truncateHistory(history []domain.ConversationTurn, max int) []domain.ConversationTurn {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

// userMessage renders the retrieved chunks and the query into the final
// user turn. Each chunk is labeled with its source site so the model can
// attribute its statements.
func userMessage(query string, chunks []domain.RetrievedChunk) string {
	var b strings.Builder

	b.WriteString("CONTEXT (archaeological site knowledge base):\n")
	if len(chunks) == 0 {
		b.WriteString("(no matching documents)\n")
	}
	for _, c := range chunks {
		fmt.Fprintf(&b, "\n[%s", c.Metadata.Site)
		if c.Metadata.City != "" {
			fmt.Fprintf(&b, ", %s", c.Metadata.City)
		}
		if c.Metadata.Period != "" {
			fmt.Fprintf(&b, " - %s", c.Metadata.Period)
		}
		b.WriteString("]\n")
		b.WriteString(strings.TrimSpace(c.Text))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nQUESTION: %s\n", query)
	b.WriteString("\nAnswer precisely using only the context above.")

	return b.String()
}

// sourcesFromChunks lists the documents behind the prompt, in retrieval
// order, one entry per document (first occurrence wins).
func sourcesFromChunks(chunks []domain.RetrievedChunk) []domain.SourceRef {
	seen := make(map[int]bool, len(chunks))
	sources := make([]domain.SourceRef, 0, len(chunks))

	for _, c := range chunks {
		if seen[c.Metadata.DocumentID] {
			continue
		}
		seen[c.Metadata.DocumentID] = true
		sources = append(sources, domain.SourceRef{
			DocumentID: c.Metadata.DocumentID,
			Site:       c.Metadata.Site,
			Relevance:  c.Relevance,
		})
	}

	return sources
}
