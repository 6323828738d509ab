package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
)

var historySearch string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Print a conversation's turns",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRenameCmd = &cobra.Command{
	Use:   "rename [conversation-id] [title]",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryRename,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [conversation-id]",
	Short: "Delete a conversation and its turns",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history counts",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

func init() {
	historyListCmd.Flags().StringVarP(&historySearch, "search", "s", "", "filter by title or message content")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRenameCmd, historyDeleteCmd, historyStatsCmd)
	rootCmd.AddCommand(historyCmd)
}

func requireHistoryService() error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	return nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if err := requireHistoryService(); err != nil {
		return err
	}

	summaries, err := historyService.List(cmd.Context(), historySearch)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		cmd.Println("No conversations found.")
		return nil
	}

	for _, s := range summaries {
		cmd.Printf("  %s  %-40s  %d turns  %s\n",
			s.ID, truncateTitle(s.Title, 40), s.TurnCount,
			s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := requireHistoryService(); err != nil {
		return err
	}

	turns, err := historyService.Turns(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("conversation not found")
		}
		return err
	}

	for _, turn := range turns {
		switch turn.Role {
		case domain.RoleUser:
			cmd.Printf("You: %s\n\n", turn.Content)
		case domain.RoleAssistant:
			cmd.Printf("Assistant: %s\n", turn.Content)
			printSources(cmd, turn.Sources)
			cmd.Println()
		}
	}
	return nil
}

func runHistoryRename(cmd *cobra.Command, args []string) error {
	if err := requireHistoryService(); err != nil {
		return err
	}

	if err := historyService.Rename(cmd.Context(), args[0], args[1]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("conversation not found")
		}
		return err
	}
	cmd.Println("Renamed.")
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if err := requireHistoryService(); err != nil {
		return err
	}

	if err := historyService.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("conversation not found")
		}
		return err
	}
	cmd.Println("Deleted.")
	return nil
}

func runHistoryStats(cmd *cobra.Command, _ []string) error {
	if err := requireHistoryService(); err != nil {
		return err
	}

	stats, err := historyService.Stats(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Conversations: %d\n", stats.Conversations)
	cmd.Printf("Turns:         %d\n", stats.Turns)
	return nil
}

// truncateTitle shortens a title for the listing column.
func truncateTitle(title string, max int) string {
	if len(title) <= max {
		return title
	}
	return strings.TrimSpace(title[:max-3]) + "..."
}
