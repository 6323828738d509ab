package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

var (
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve matching passages without generating an answer",
	Long: `Embeds the query and returns the nearest indexed passages with their
relevance scores. Useful for inspecting what context an answer would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of passages to retrieve")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	topK := retrieveTopK
	if topK <= 0 {
		topK = defaultTopK
	}

	chunks, err := retrieverService.Retrieve(cmd.Context(), args[0], topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputRetrieveTable(cmd, chunks)
}

func outputRetrieveTable(cmd *cobra.Command, chunks []domain.RetrievedChunk) error {
	if len(chunks) == 0 {
		cmd.Println("No matching passages.")
		return nil
	}

	cmd.Println("Passages:")
	cmd.Println()
	for i, c := range chunks {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, c.Metadata.Site, c.Relevance)
		if c.Metadata.Period != "" {
			cmd.Printf("      Period: %s\n", c.Metadata.Period)
		}
		cmd.Printf("      %s\n", snippet(c.Text, 120))
		cmd.Println()
	}

	return nil
}

// snippet truncates text to max bytes on a rune boundary.
func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
