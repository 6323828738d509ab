package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

var (
	askTopK   int
	askStream bool
	askNoSave bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question",
	Long: `Answers a single question from the indexed corpus and prints the
response with its sources. The exchange is saved as a new conversation
unless --no-save is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of context chunks to retrieve")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer as it is generated")
	askCmd.Flags().BoolVar(&askNoSave, "no-save", false, "do not record the exchange in history")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	topK := askTopK
	if topK <= 0 {
		topK = defaultTopK
	}

	var answer domain.Answer
	var err error
	if askStream {
		answer, err = chatService.AnswerStream(cmd.Context(), query, nil, topK,
			func(delta string) error {
				cmd.Print(delta)
				return nil
			})
		cmd.Println()
	} else {
		answer, err = chatService.Answer(cmd.Context(), query, nil, topK)
		if err == nil {
			cmd.Println(answer.Text)
		}
	}
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	printSources(cmd, answer.Sources)

	if !askNoSave && historyService != nil {
		id, err := historyService.StartConversation(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("saving conversation: %w", err)
		}
		if err := historyService.RecordExchange(cmd.Context(), id, query, answer); err != nil {
			return fmt.Errorf("saving exchange: %w", err)
		}
		cmd.Printf("\nSaved as conversation %s\n", id)
	}

	return nil
}

// printSources lists answer sources, one per document.
func printSources(cmd *cobra.Command, sources []domain.SourceRef) {
	if len(sources) == 0 {
		return
	}
	cmd.Println("\nSources:")
	for _, src := range sources {
		cmd.Printf("  - %s (relevance %.2f)\n", src.Site, src.Relevance)
	}
}
