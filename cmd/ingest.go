package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supervisionhq/jarvis/internal/assistant"
	"github.com/supervisionhq/jarvis/internal/config"
	"github.com/supervisionhq/jarvis/internal/contacts"
	"github.com/supervisionhq/jarvis/internal/ingest"
)

var (
	ingestContact    string
	papersMetadata   string
	articleCollected string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load documents into the corpus",
}

var ingestConversationsCmd = &cobra.Command{
	Use:   "conversations --contact <name> <file...>",
	Short: "Ingest conversation transcripts for a contact",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestConversations,
}

var ingestHealthCmd = &cobra.Command{
	Use:   "health <dir>",
	Short: "Ingest health articles from a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestHealth,
}

var ingestPapersCmd = &cobra.Command{
	Use:   "papers <dir>",
	Short: "Ingest research papers from a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestPapers,
}

var ingestArticleCmd = &cobra.Command{
	Use:   "article <url>",
	Short: "Fetch a web article and ingest its readable text",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestArticle,
}

func init() {
	ingestConversationsCmd.Flags().StringVar(&ingestContact, "contact", "", "contact the transcripts belong to (required)")
	_ = ingestConversationsCmd.MarkFlagRequired("contact")

	ingestPapersCmd.Flags().StringVar(&papersMetadata, "metadata", "", "JSON file mapping paper ids to titles")
	ingestArticleCmd.Flags().StringVar(&articleCollected, "collection", assistant.HealthCollection, "collection to ingest into")

	ingestCmd.AddCommand(ingestConversationsCmd, ingestHealthCmd, ingestPapersCmd, ingestArticleCmd)
	rootCmd.AddCommand(ingestCmd)
}

// contactKey turns a --contact value into a registry key. Accepts either
// the key itself ("PriyaSharma") or a spaced full name ("Priya Sharma").
func contactKey(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	return contacts.CanonicalKey(parts[0], strings.Join(parts[1:], " "))
}

// withIngestLock runs fn while holding the ingest run lock, so concurrent
// ingest invocations do not interleave.
func withIngestLock(fn func() error) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	release, err := ingest.AcquireLock(dir)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()
	return fn()
}

func runIngestConversations(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return withIngestLock(func() error {
		key := contactKey(ingestContact)
		for _, path := range args {
			result, err := a.Indexer.Conversation(ctx, key, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %s: document %d, %d chunks\n",
				result.Title, result.DocumentID, result.Chunks)
		}
		return nil
	})
}

func runIngestHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return withIngestLock(func() error {
		results, err := a.Indexer.HealthDir(ctx, args[0], assistant.HealthCollection)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %s: document %d, %d chunks\n", r.Title, r.DocumentID, r.Chunks)
		}
		return nil
	})
}

func runIngestPapers(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return withIngestLock(func() error {
		results, err := a.Indexer.PapersDir(ctx, args[0], assistant.PapersCollection, papersMetadata)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %s: document %d, %d chunks\n", r.Title, r.DocumentID, r.Chunks)
		}
		return nil
	})
}

func runIngestArticle(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return withIngestLock(func() error {
		fetcher := ingest.NewFetcher(logger)
		result, err := a.Indexer.Article(ctx, fetcher, args[0], articleCollected)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %q into %s: document %d, %d chunks\n",
			result.Title, result.Collection, result.DocumentID, result.Chunks)
		return nil
	})
}
