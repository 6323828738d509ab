package driven

import "context"

// LLMService provides text generation for answering queries.
//
// Implementations may include:
//   - Ollama (local models)
//   - Any OpenAI-compatible inference server
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the full reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ChatStream conducts a conversation, delivering the reply incrementally.
	// onDelta is called once per generated fragment, in order; returning an
	// error from onDelta aborts generation. The accumulated reply is returned.
	// The sequence is finite and not restartable; cancel ctx to stop waiting.
	ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions, onDelta func(string) error) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures generation behaviour. The orchestrator passes
// fixed values from configuration so prompting stays deterministic.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus-sampling threshold.
	TopP float64
}
