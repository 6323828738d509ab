package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

// Valid roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// SourceRef attributes part of an answer to a corpus document.
type SourceRef struct {
	// DocumentID is the corpus document the context chunk came from.
	DocumentID int `json:"document_id"`

	// Site is the site name, kept for display without a corpus lookup.
	Site string `json:"site,omitempty"`

	// Relevance is the similarity score of the retrieved chunk, in [0, 1].
	Relevance float64 `json:"relevance"`
}

// ConversationTurn is a single persisted message within a conversation.
// Turns are immutable once created.
type ConversationTurn struct {
	// Role is who authored the turn.
	Role Role

	// Content is the message text.
	Content string

	// Sources lists the corpus documents used to produce an assistant turn.
	// Nil for user turns.
	Sources []SourceRef

	// CreatedAt is when the turn was persisted.
	CreatedAt time.Time
}

// Validate checks a turn before persistence.
func (t *ConversationTurn) Validate() error {
	if _, err := ParseRole(string(t.Role)); err != nil {
		return err
	}
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("%w: turn content is empty", ErrInvalidInput)
	}
	return nil
}

// ConversationSummary is the listing view of a conversation.
type ConversationSummary struct {
	// ID is the conversation identifier.
	ID string

	// Title is the display title, derived from the first user turn.
	Title string

	// TurnCount is the number of persisted turns.
	TurnCount int

	// CreatedAt is when the conversation was created.
	CreatedAt time.Time

	// UpdatedAt is when a turn was last appended.
	UpdatedAt time.Time
}

// DefaultConversationTitle is used until a first user turn supplies one.
const DefaultConversationTitle = "New conversation"

// maxTitleLength bounds titles derived from user input.
const maxTitleLength = 80

// TitleFromQuery derives a conversation title from the first user query.
func TitleFromQuery(query string) string {
	title := strings.Join(strings.Fields(query), " ")
	if title == "" {
		return DefaultConversationTitle
	}
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength-3]) + "..."
	}
	return title
}
