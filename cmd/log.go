package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kvshift/kvshift/internal/message"
	"github.com/kvshift/kvshift/internal/report"
)

var logFilePath string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect a previously written migration log",
	Long:  `It renders the per-environment outcomes and the batch summary of a migration log written by 'migrate --output', without touching Azure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := logFilePath
		if path == "" {
			var err error
			path, err = message.Prompt("Enter the path to the migration log", "migration-log.json")
			if err != nil {
				return err
			}
		}

		log, err := report.Read(path)
		if err != nil {
			return err
		}

		message.Info("Migration log from %s covers %d environment(s)", log.GeneratedAt.Format(time.RFC3339), len(log.Results))
		for _, result := range log.Results {
			renderResult(result)
		}
		summary := report.Summarize(log.Results)
		message.Info("Migration finished: %d completed, %d with warnings, %d aborted", summary.Completed, summary.WithWarnings, summary.Aborted)
		return nil
	},
}

func init() {
	logCmd.Flags().StringVar(&logFilePath, "file", "", "path to the migration log")
	rootCmd.AddCommand(logCmd)
}
