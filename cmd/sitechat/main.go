package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	configfile "github.com/patrimonia-labs/sitechat/internal/adapters/driven/config/file"
	embeddingollama "github.com/patrimonia-labs/sitechat/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/patrimonia-labs/sitechat/internal/adapters/driven/llm/ollama"
	"github.com/patrimonia-labs/sitechat/internal/adapters/driven/storage/sqlite"
	"github.com/patrimonia-labs/sitechat/internal/adapters/driven/vectorstore/chroma"
	"github.com/patrimonia-labs/sitechat/internal/adapters/driving/cli"
	"github.com/patrimonia-labs/sitechat/internal/chunker"
	"github.com/patrimonia-labs/sitechat/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file can supply SITECHAT_* overrides; absence is fine.
	_ = godotenv.Load()

	configStore, err := configfile.NewConfigStore(os.Getenv("SITECHAT_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}
	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Driven adapters
	embedding := embeddingollama.NewEmbeddingService(embeddingollama.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.EmbeddingModel,
	})
	defer embedding.Close()

	llm := llmollama.NewLLMService(llmollama.LLMConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.LLMModel,
	})
	defer llm.Close()

	vectorStore := chroma.NewStore(chroma.Config{
		BaseURL:    cfg.Chroma.BaseURL,
		Collection: cfg.Chroma.Collection,
	})
	defer vectorStore.Close()

	historyStore, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer historyStore.Close()

	// Core services
	splitter := chunker.New(
		chunker.WithTargetWords(cfg.Chunking.TargetWords),
		chunker.WithOverlapWords(cfg.Chunking.OverlapWords),
		chunker.WithMinWords(cfg.Chunking.MinWords),
	)
	ingestService := services.NewIngestService(splitter, embedding, vectorStore)
	retrieverService := services.NewRetrieverService(
		embedding, vectorStore, cfg.Chat.MaxInputLength, cfg.Chat.MinRelevance)
	chatService := services.NewChatService(retrieverService, llm, services.ChatConfig{
		MaxInputLength:     cfg.Chat.MaxInputLength,
		MaxHistoryMessages: cfg.Chat.MaxHistoryMessages,
		Temperature:        cfg.Chat.Temperature,
		TopP:               cfg.Chat.TopP,
		MaxTokens:          cfg.Chat.MaxTokens,
	})
	historyService := services.NewHistoryService(historyStore)

	// Wire the CLI
	cli.SetVersion(version)
	cli.SetIngestService(ingestService)
	cli.SetRetrieverService(retrieverService)
	cli.SetChatService(chatService)
	cli.SetHistoryService(historyService)
	cli.SetBackends(embedding, llm, vectorStore)
	cli.SetDefaults(cfg.Corpus.Path, cfg.Chat.TopK)

	return cli.Execute()
}
