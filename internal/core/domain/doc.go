// Package domain defines the core business entities for sitechat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: A corpus record describing an archaeological site
//   - Chunk: A bounded excerpt of a document used as a retrieval unit
//   - ConversationTurn / ConversationSummary: Persisted chat history
//   - RetrievedChunk / Answer: Retrieval and generation results
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
