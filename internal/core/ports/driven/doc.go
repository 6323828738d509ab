// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - EmbeddingService: Generates vector embeddings (Ollama)
//   - LLMService: Chat generation (Ollama)
//   - VectorStore: Chunk storage and similarity search (Chroma)
//   - HistoryStore: Conversation persistence (SQLite)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
