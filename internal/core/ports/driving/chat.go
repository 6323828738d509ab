package driving

import (
	"context"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

// ChatService answers queries with retrieved context and conversation history.
// It does not persist anything: the caller appends turns to the history store
// only after an answer is produced, so an abandoned query leaves no partial
// state behind.
type ChatService interface {
	// Answer retrieves context for query, assembles a prompt with the given
	// history and returns the generated response with source attributions.
	Answer(ctx context.Context, query string, history []domain.ConversationTurn, topK int) (domain.Answer, error)

	// AnswerStream behaves like Answer but delivers the response
	// incrementally through onDelta. Returning an error from onDelta, or
	// cancelling ctx, stops generation.
	AnswerStream(ctx context.Context, query string, history []domain.ConversationTurn, topK int, onDelta func(string) error) (domain.Answer, error)
}
