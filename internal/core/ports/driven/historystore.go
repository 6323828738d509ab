package driven

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// HistoryStore persists conversations and their turns.
// Every write is atomic per call: a turn is either fully persisted or not
// persisted at all, and deleting a conversation removes all its turns or
// none of them.
type HistoryStore interface {
	// CreateConversation creates an empty conversation and returns its id.
	CreateConversation(ctx context.Context, title string) (string, error)

	// AppendTurn appends a turn and bumps the conversation's updated_at
	// in the same transaction.
	AppendTurn(ctx context.Context, conversationID string, turn domain.ConversationTurn) error

	// GetTurns returns a conversation's turns in chronological order.
	// Returns domain.ErrNotFound for an unknown conversation.
	GetTurns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error)

	// ListConversations returns summaries ordered by most recently updated.
	// A non-empty searchTerm filters to conversations whose title or any
	// turn content contains the term, case-insensitively.
	ListConversations(ctx context.Context, searchTerm string) ([]domain.ConversationSummary, error)

	// RenameConversation updates a conversation's title.
	RenameConversation(ctx context.Context, conversationID, title string) error

	// DeleteConversation removes a conversation and all its turns.
	DeleteConversation(ctx context.Context, conversationID string) error

	// Stats returns overall conversation and turn counts.
	Stats(ctx context.Context) (HistoryStats, error)

	// Close releases resources.
	Close() error
}

// HistoryStats summarises the history database.
type HistoryStats struct {
	Conversations int
	Turns         int
}
