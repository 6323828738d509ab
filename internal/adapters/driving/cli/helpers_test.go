package cli

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

// stubIngestService implements driving.IngestService.
type stubIngestService struct {
	report domain.IngestReport
	err    error
	path   string
}

func (s *stubIngestService) Ingest(_ context.Context, corpusPath string) (domain.IngestReport, error) {
	s.path = corpusPath
	return s.report, s.err
}

// stubChatService implements driving.ChatService.
type stubChatService struct {
	answer domain.Answer
	err    error
	query  string
	topK   int
}

func (s *stubChatService) Answer(_ context.Context, query string, _ []domain.ConversationTurn, topK int) (domain.Answer, error) {
	s.query = query
	s.topK = topK
	return s.answer, s.err
}

func (s *stubChatService) AnswerStream(
	_ context.Context, query string, _ []domain.ConversationTurn, topK int, onDelta func(string) error,
) (domain.Answer, error) {
	s.query = query
	s.topK = topK
	if s.err != nil {
		return domain.Answer{}, s.err
	}
	if err := onDelta(s.answer.Text); err != nil {
		return domain.Answer{}, err
	}
	return s.answer, nil
}

// stubHistoryService implements driving.HistoryService.
type stubHistoryService struct {
	summaries []domain.ConversationSummary
	turns     []domain.ConversationTurn
	stats     driven.HistoryStats
	err       error

	started  []string
	recorded []string
	renamed  map[string]string
	deleted  []string
}

func newStubHistoryService() *stubHistoryService {
	return &stubHistoryService{renamed: make(map[string]string)}
}

func (s *stubHistoryService) StartConversation(_ context.Context, firstQuery string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.started = append(s.started, firstQuery)
	return "conv-1", nil
}

func (s *stubHistoryService) RecordExchange(_ context.Context, conversationID, query string, _ domain.Answer) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, conversationID+":"+query)
	return nil
}

func (s *stubHistoryService) Turns(_ context.Context, _ string) ([]domain.ConversationTurn, error) {
	return s.turns, s.err
}

func (s *stubHistoryService) List(_ context.Context, _ string) ([]domain.ConversationSummary, error) {
	return s.summaries, s.err
}

func (s *stubHistoryService) Rename(_ context.Context, conversationID, title string) error {
	if s.err != nil {
		return s.err
	}
	s.renamed[conversationID] = title
	return nil
}

func (s *stubHistoryService) Delete(_ context.Context, conversationID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, conversationID)
	return nil
}

func (s *stubHistoryService) Stats(_ context.Context) (driven.HistoryStats, error) {
	return s.stats, s.err
}

// setupTestServices wires stub services into the command tree and returns a
// cleanup that restores the previous wiring.
func setupTestServices() (chat *stubChatService, ingest *stubIngestService, history *stubHistoryService, cleanup func()) {
	prevChat := chatService
	prevIngest := ingestService
	prevHistory := historyService
	prevCorpus := defaultCorpusPath

	chat = &stubChatService{answer: domain.Answer{Text: "stub answer"}}
	ingest = &stubIngestService{report: domain.IngestReport{DocumentsProcessed: 2, ChunksCreated: 5}}
	history = newStubHistoryService()

	chatService = chat
	ingestService = ingest
	historyService = history
	defaultCorpusPath = "sites.jsonl"

	cleanup = func() {
		chatService = prevChat
		ingestService = prevIngest
		historyService = prevHistory
		defaultCorpusPath = prevCorpus
	}
	return chat, ingest, history, cleanup
}
