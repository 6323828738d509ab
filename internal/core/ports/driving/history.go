package driving

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

// HistoryService exposes conversation management to the UI layer.
type HistoryService interface {
	// StartConversation creates a conversation titled after the first query.
	StartConversation(ctx context.Context, firstQuery string) (string, error)

	// RecordExchange persists a completed user/assistant exchange.
	// Called only after generation succeeded.
	RecordExchange(ctx context.Context, conversationID, query string, answer domain.Answer) error

	// Turns returns a conversation's turns in chronological order.
	Turns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error)

	// List returns conversation summaries, optionally filtered by searchTerm.
	List(ctx context.Context, searchTerm string) ([]domain.ConversationSummary, error)

	// Rename updates a conversation title.
	Rename(ctx context.Context, conversationID, title string) error

	// Delete removes a conversation and all its turns.
	Delete(ctx context.Context, conversationID string) error

	// Stats returns overall history counts.
	Stats(ctx context.Context) (driven.HistoryStats, error)
}
