package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kvshift/kvshift/internal/message"
)

var silentMode bool
var verboseMode bool
var noEmoji bool
var noColor bool

var rootCmd = &cobra.Command{
	Use:           "kvshift",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		message.SetSilentMode(silentMode)
		message.SetVerboseMode(verboseMode)
		message.SetEmojiMode(!noEmoji)
		message.SetColorMode(!noColor)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		message.Error("failed to execute command: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&silentMode, "silent", false, "silent mode (hides everything except prompt/failure messages)")
	rootCmd.PersistentFlags().BoolVar(&verboseMode, "verbose", false, "verbose output (show everything, overrides silent mode)")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emojis")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and emojis")
}
