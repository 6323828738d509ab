package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// statusPingTimeout bounds each backend check.
const statusPingTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend connectivity",
	Long: `Pings the embedding backend, the generation backend and the vector
store, and reports the size of the indexed collection.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if embeddingService != nil {
		reportPing(ctx, cmd, "Embedding ("+embeddingService.ModelName()+")",
			embeddingService.Ping)
	}
	if llmService != nil {
		reportPing(ctx, cmd, "Generation ("+llmService.ModelName()+")",
			llmService.Ping)
	}
	if vectorStore != nil {
		reportPing(ctx, cmd, "Vector store", vectorStore.Ping)

		countCtx, cancel := context.WithTimeout(ctx, statusPingTimeout)
		defer cancel()
		if count, err := vectorStore.Count(countCtx); err == nil {
			cmd.Printf("  Indexed chunks: %d\n", count)
		}
	}

	if historyService != nil {
		if stats, err := historyService.Stats(ctx); err == nil {
			cmd.Printf("  History: %d conversations, %d turns\n",
				stats.Conversations, stats.Turns)
		}
	}

	return nil
}

func reportPing(ctx context.Context, cmd *cobra.Command, name string, ping func(context.Context) error) {
	pingCtx, cancel := context.WithTimeout(ctx, statusPingTimeout)
	defer cancel()

	if err := ping(pingCtx); err != nil {
		cmd.Printf("✗ %s: %v\n", name, err)
		return
	}
	cmd.Printf("✓ %s: ok\n", name)
}
