// Package cmd implements the jarvis command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/supervisionhq/jarvis/internal/app"
	"github.com/supervisionhq/jarvis/internal/config"
	"github.com/supervisionhq/jarvis/internal/log"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "jarvis - a personal assistant that routes your requests",
	Long: `jarvis is a personal assistant. Each request is classified and routed:
general questions, research paper questions, health questions, past
conversations with your contacts, and sending text messages all work from
the same prompt.

Running jarvis without a subcommand starts the interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// newLogger builds the process logger. Output goes to stderr; stdout stays
// reserved for command output and the MCP JSON-RPC stream.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugFlag || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// loadApp loads the config and builds the component graph.
func loadApp(ctx context.Context, logger *slog.Logger) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}
