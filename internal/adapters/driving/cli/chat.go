package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/patrimonia-labs/sitechat/internal/adapters/driving/tui"
)

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Opens the interactive chat interface. Every answer is grounded in the
indexed corpus and each completed exchange is saved to history.

Controls:
  enter  Send the question
  esc    Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatConversationID, "conversation", "c", "", "resume an existing conversation by id")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	model, err := tui.NewModel(tui.Config{
		Chat:           chatService,
		History:        historyService,
		TopK:           defaultTopK,
		ConversationID: chatConversationID,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat view: %w", err)
	}

	model.WithContext(cmd.Context())

	if err := model.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
