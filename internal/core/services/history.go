package services

import (
	"context"
	"time"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService wraps the history store with conversation-level behaviour:
// titles derived from the first query, and exchange recording that only
// happens after generation succeeded.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// StartConversation creates a conversation titled after the first query.
func (s *HistoryService) StartConversation(ctx context.Context, firstQuery string) (string, error) {
	return s.store.CreateConversation(ctx, domain.TitleFromQuery(firstQuery))
}

// RecordExchange persists the user turn and the assistant turn of a
// completed exchange. Assistant sources are stored with the turn.
func (s *HistoryService) RecordExchange(
	ctx context.Context, conversationID, query string, answer domain.Answer,
) error {
	now := time.Now().UTC()

	userTurn := domain.ConversationTurn{
		Role:      domain.RoleUser,
		Content:   query,
		CreatedAt: now,
	}
	if err := s.store.AppendTurn(ctx, conversationID, userTurn); err != nil {
		return err
	}

	assistantTurn := domain.ConversationTurn{
		Role:      domain.RoleAssistant,
		Content:   answer.Text,
		Sources:   answer.Sources,
		CreatedAt: now,
	}
	return s.store.AppendTurn(ctx, conversationID, assistantTurn)
}

// Turns returns a conversation's turns in chronological order.
func (s *HistoryService) Turns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	return s.store.GetTurns(ctx, conversationID)
}

// List returns conversation summaries, newest-updated first.
func (s *HistoryService) List(ctx context.Context, searchTerm string) ([]domain.ConversationSummary, error) {
	return s.store.ListConversations(ctx, searchTerm)
}

// Rename updates a conversation title.
func (s *HistoryService) Rename(ctx context.Context, conversationID, title string) error {
	return s.store.RenameConversation(ctx, conversationID, title)
}

// Delete removes a conversation and all its turns.
func (s *HistoryService) Delete(ctx context.Context, conversationID string) error {
	return s.store.DeleteConversation(ctx, conversationID)
}

// Stats returns overall history counts.
func (s *HistoryService) Stats(ctx context.Context) (driven.HistoryStats, error) {
	return s.store.Stats(ctx)
}
