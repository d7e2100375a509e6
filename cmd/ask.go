package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCategory bool

var askCmd = &cobra.Command{
	Use:   "ask [request]",
	Short: "Route a single request and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&showCategory, "category", false, "print the category the request was routed to")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	request := strings.Join(args, " ")
	reply, err := a.Assistant.Handle(ctx, request, "")
	if err != nil {
		return err
	}

	if showCategory {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] ", reply.Category)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Answer)
	return nil
}
