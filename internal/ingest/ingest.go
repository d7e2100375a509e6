// Package ingest loads documents into corpus collections: conversation
// transcripts, health articles, research papers, and fetched web articles.
// Ingestion is an offline concern; the request router only reads what this
// package writes.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/supervisionhq/jarvis/internal/contacts"
)

// Minimum chunk lengths per document kind. Papers use longer chunks so a
// retrieved excerpt carries enough of an argument to be useful.
const (
	ConversationMinLength = 256
	ArticleMinLength      = 256
	PaperMinLength        = 512
)

// ErrNoDocuments indicates a directory ingest found nothing to load.
var ErrNoDocuments = errors.New("no documents found")

// CorpusWriter is the corpus operation ingestion needs.
type CorpusWriter interface {
	AddText(ctx context.Context, collection, text string, minLength int, metadata map[string]string) (int64, int, error)
}

// ContactUpdater reads and updates contact summary state.
type ContactUpdater interface {
	Get(ctx context.Context, key string) (contacts.Contact, error)
	UpdateSummaries(ctx context.Context, key, summary, recentSummary string) error
}

// Summarizer condenses transcripts and merges running summaries.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	Merge(ctx context.Context, existing, latest string) (string, error)
}

// Result reports one ingested document.
type Result struct {
	Collection string
	DocumentID int64
	Chunks     int
	Title      string
}

// Indexer loads documents into the corpus.
type Indexer struct {
	corpus     CorpusWriter
	contacts   ContactUpdater
	summarizer Summarizer
	logger     *slog.Logger
}

// NewIndexer creates an Indexer. contacts and summarizer may be nil when
// only non-conversation ingestion is needed.
func NewIndexer(corpus CorpusWriter, contactStore ContactUpdater, summarizer Summarizer, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		corpus:     corpus,
		contacts:   contactStore,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Conversation ingests one transcript file into the contact's collection
// and refreshes the contact's summaries: the latest transcript summary
// becomes the recent summary, and is merged into the running one.
func (ix *Indexer) Conversation(ctx context.Context, contactKey, path string) (Result, error) {
	if ix.contacts == nil || ix.summarizer == nil {
		return Result{}, errors.New("conversation ingestion needs a contact store and summarizer")
	}

	contact, err := ix.contacts.Get(ctx, contactKey)
	if err != nil {
		return Result{}, fmt.Errorf("looking up contact %q: %w", contactKey, err)
	}

	transcript, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading transcript: %w", err)
	}

	metadata := map[string]string{
		"title":       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		"ingested_at": time.Now().UTC().Format(time.RFC3339),
	}
	id, chunks, err := ix.corpus.AddText(ctx, contact.Key, string(transcript), ConversationMinLength, metadata)
	if err != nil {
		return Result{}, fmt.Errorf("ingesting transcript for %s: %w", contact.Key, err)
	}

	latest, err := ix.summarizer.Summarize(ctx, string(transcript))
	if err != nil {
		return Result{}, fmt.Errorf("summarizing transcript: %w", err)
	}
	merged, err := ix.summarizer.Merge(ctx, contact.Summary, latest)
	if err != nil {
		return Result{}, fmt.Errorf("merging summaries: %w", err)
	}
	if err := ix.contacts.UpdateSummaries(ctx, contact.Key, merged, latest); err != nil {
		return Result{}, fmt.Errorf("updating summaries: %w", err)
	}

	ix.logger.Info("conversation ingested",
		"contact", contact.Key, "document_id", id, "chunks", chunks)
	return Result{Collection: contact.Key, DocumentID: id, Chunks: chunks, Title: metadata["title"]}, nil
}

// HealthDir ingests every .txt and .md file under dir into collection,
// one document per file, titled by the filename without its extension.
func (ix *Indexer) HealthDir(ctx context.Context, dir, collection string) ([]Result, error) {
	paths, err := textFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", path, err)
		}
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		id, chunks, err := ix.corpus.AddText(ctx, collection, string(content), ArticleMinLength,
			map[string]string{"title": title})
		if err != nil {
			return results, fmt.Errorf("ingesting %s: %w", path, err)
		}

		ix.logger.Info("article ingested",
			"collection", collection, "title", title, "document_id", id, "chunks", chunks)
		results = append(results, Result{Collection: collection, DocumentID: id, Chunks: chunks, Title: title})
	}
	return results, nil
}

// paperMeta is one entry of the arXiv metadata file: a JSON object keyed
// by paper id (the filename without extension).
type paperMeta struct {
	Title string `json:"title"`
}

// PapersDir ingests every .txt and .md file under dir into collection.
// metadataPath, when non-empty, names a JSON file mapping paper ids to
// titles; papers without an entry fall back to the id as title.
func (ix *Indexer) PapersDir(ctx context.Context, dir, collection, metadataPath string) ([]Result, error) {
	titles := map[string]paperMeta{}
	if metadataPath != "" {
		raw, err := os.ReadFile(metadataPath)
		if err != nil {
			return nil, fmt.Errorf("reading paper metadata: %w", err)
		}
		if err := json.Unmarshal(raw, &titles); err != nil {
			return nil, fmt.Errorf("parsing paper metadata: %w", err)
		}
	}

	paths, err := textFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", path, err)
		}

		paperID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		title := paperID
		if meta, ok := titles[paperID]; ok && meta.Title != "" {
			title = meta.Title
		}
		metadata := map[string]string{"title": title, "arxiv_id": paperID}

		id, chunks, err := ix.corpus.AddText(ctx, collection, string(content), PaperMinLength, metadata)
		if err != nil {
			return results, fmt.Errorf("ingesting %s: %w", path, err)
		}

		ix.logger.Info("paper ingested",
			"collection", collection, "title", title, "document_id", id, "chunks", chunks)
		results = append(results, Result{Collection: collection, DocumentID: id, Chunks: chunks, Title: title})
	}
	return results, nil
}

// Article fetches a web page and ingests its readable text.
func (ix *Indexer) Article(ctx context.Context, fetcher *Fetcher, rawURL, collection string) (Result, error) {
	article, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}

	metadata := map[string]string{"title": article.Title, "url": article.URL}
	id, chunks, err := ix.corpus.AddText(ctx, collection, article.Text, ArticleMinLength, metadata)
	if err != nil {
		return Result{}, fmt.Errorf("ingesting article %s: %w", rawURL, err)
	}

	ix.logger.Info("web article ingested",
		"collection", collection, "title", article.Title, "document_id", id, "chunks", chunks)
	return Result{Collection: collection, DocumentID: id, Chunks: chunks, Title: article.Title}, nil
}

// textFiles lists .txt and .md files directly under dir, sorted by name.
func textFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
