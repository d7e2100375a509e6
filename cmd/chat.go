package cmd

import (
	"github.com/spf13/cobra"

	"github.com/supervisionhq/jarvis/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(ctx, a.Assistant)
}
