package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [corpus-file]",
	Short: "Index the site corpus into the vector store",
	Long: `Reads a JSONL corpus of archaeological-site records, splits each
description into overlapping chunks, embeds them and replaces the vector
store collection. Re-running ingest against the same corpus produces the
same collection.

The corpus file defaults to the path configured in config.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	corpusPath := defaultCorpusPath
	if len(args) == 1 {
		corpusPath = args[0]
	}
	if corpusPath == "" {
		return errors.New("no corpus file given and none configured")
	}

	cmd.Printf("Ingesting %s...\n", corpusPath)

	report, err := ingestService.Ingest(cmd.Context(), corpusPath)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d documents into %d chunks", report.DocumentsProcessed, report.ChunksCreated)
	if report.RecordsSkipped > 0 {
		cmd.Printf(" (%d records skipped)", report.RecordsSkipped)
	}
	cmd.Println()
	return nil
}
