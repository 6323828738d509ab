// Package cli implements the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driving"
	"github.com/patrimonia-labs/sitechat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	ingestService    driving.IngestService
	retrieverService driving.RetrieverService
	chatService      driving.ChatService
	historyService   driving.HistoryService

	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	vectorStore      driven.VectorStore
)

// Defaults injected by main from the loaded configuration.
var (
	defaultCorpusPath string
	defaultTopK       = 5
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sitechat",
	Short: "Chat with an archaeological-site knowledge base",
	Long: `Sitechat answers questions about archaeological heritage sites using a
local retrieval pipeline: site descriptions are chunked and embedded into a
vector store, and every answer is grounded in the retrieved passages.

Typical workflow:
  sitechat ingest sites.jsonl     index the corpus
  sitechat ask "..."              ask a one-shot question
  sitechat chat                   start an interactive conversation`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	version = v
}

// SetIngestService sets the ingestion service.
func SetIngestService(s driving.IngestService) {
	ingestService = s
}

// SetRetrieverService sets the retrieval service.
func SetRetrieverService(s driving.RetrieverService) {
	retrieverService = s
}

// SetChatService sets the chat service.
func SetChatService(s driving.ChatService) {
	chatService = s
}

// SetHistoryService sets the history service.
func SetHistoryService(s driving.HistoryService) {
	historyService = s
}

// SetBackends sets the driven services used by the status command.
func SetBackends(embedding driven.EmbeddingService, llm driven.LLMService, store driven.VectorStore) {
	embeddingService = embedding
	llmService = llm
	vectorStore = store
}

// SetDefaults sets configuration-derived defaults for command flags.
func SetDefaults(corpusPath string, topK int) {
	defaultCorpusPath = corpusPath
	if topK > 0 {
		defaultTopK = topK
	}
}
