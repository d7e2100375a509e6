package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supervisionhq/jarvis/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", api.DefaultAddr, "listen address (host:port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := validateAddr(serveAddr); err != nil {
		return fmt.Errorf("invalid address %q: %w", serveAddr, err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := api.NewServer(a.Assistant, a.Contacts, a.Corpus, a.Pool, api.Options{
		CORSOrigins: a.Config.CORSOrigins,
		TrustProxy:  a.Config.TrustProxy,
	}, logger)

	logger.Info("HTTP server ready", "addr", serveAddr, "api", "/api/*", "health", "/health, /ready")
	return srv.Run(ctx, serveAddr)
}
