// Package assistant routes personal assistant requests. Each request is
// classified into a category, enriched with excerpts retrieved from the
// category's corpus collection, and answered by the language model. The
// router itself is stateless; callers that want a multi-turn feel pass the
// rolling conversation context with each request.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/supervisionhq/jarvis/internal/contacts"
	"github.com/supervisionhq/jarvis/internal/corpus"
)

// ErrGeneration indicates the language model failed while producing the
// final answer. Classification and retrieval failures degrade instead.
var ErrGeneration = errors.New("answer generation failed")

// Searcher is the corpus operation the router needs.
type Searcher interface {
	Search(ctx context.Context, collection, query string, opts ...corpus.SearchOption) ([]corpus.Hit, error)
}

// Excerpter expands search hits into provenance-tagged excerpts.
type Excerpter interface {
	Assemble(ctx context.Context, hits []corpus.Hit) []corpus.Excerpt
}

// ContactResolver maps a request to a stored contact.
type ContactResolver interface {
	Resolve(ctx context.Context, request string) (contacts.Contact, error)
}

// Reply is the router's answer to one request.
type Reply struct {
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// Config carries the Assistant's dependencies.
type Config struct {
	Generator Generator
	Store     Searcher
	Assembler Excerpter
	Resolver  ContactResolver
	Messenger Messenger

	// OwnerName prefixes outgoing text messages ("Aarav Wattal: ...").
	OwnerName string

	// TopK is the number of chunks retrieved per request. Default 3.
	TopK int

	Logger *slog.Logger
}

// Assistant classifies and answers requests.
// It is safe for concurrent use by multiple goroutines.
type Assistant struct {
	gen       Generator
	store     Searcher
	assembler Excerpter
	resolver  ContactResolver
	messenger Messenger
	ownerName string
	topK      int
	logger    *slog.Logger
}

// New creates an Assistant from the config. Generator, Store, Assembler,
// Resolver, and Messenger are required.
func New(cfg Config) (*Assistant, error) {
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Assembler == nil {
		return nil, errors.New("assembler is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if cfg.Messenger == nil {
		return nil, errors.New("messenger is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		gen:       cfg.Generator,
		store:     cfg.Store,
		assembler: cfg.Assembler,
		resolver:  cfg.Resolver,
		messenger: cfg.Messenger,
		ownerName: cfg.OwnerName,
		topK:      topK,
		logger:    logger,
	}, nil
}

// Handle answers one request. convContext is the caller's rolling
// conversation context and may be empty.
//
// Classification failures and unknown labels silently fall back to Normal.
// Retrieval failures degrade to answering without excerpts. A failure in
// the final answer generation returns ErrGeneration; an unresolvable
// contact reference returns contacts.ErrContactNotFound.
func (a *Assistant) Handle(ctx context.Context, request, convContext string) (Reply, error) {
	category := a.classify(ctx, request)

	var answer string
	var err error
	switch category {
	case Normal:
		answer, err = a.handleNormal(ctx, request, convContext)
	case Administrative:
		answer, err = a.handleAdministrative(ctx, request)
	case Conversational:
		answer, err = a.handleConversational(ctx, request, convContext)
	case Technical, Healthcare:
		answer, err = a.handleRetrieval(ctx, category, request, convContext)
	default:
		answer, err = a.handleNormal(ctx, request, convContext)
	}
	if err != nil {
		return Reply{}, err
	}

	return Reply{Answer: answer, Category: category.String()}, nil
}

// classify asks the manager prompt for a one-word category. Any failure or
// unrecognized label falls back to Normal without surfacing an error.
func (a *Assistant) classify(ctx context.Context, request string) Category {
	label, err := a.gen.Generate(ctx, managerSystemPrompt, request)
	if err != nil {
		a.logger.Warn("classification failed, treating as normal", "error", err)
		return Normal
	}

	category, ok := ParseCategory(label)
	if !ok {
		a.logger.Debug("unrecognized category label, treating as normal", "label", label)
	}
	return category
}

func (a *Assistant) handleNormal(ctx context.Context, request, convContext string) (string, error) {
	d := descriptorFor(Normal)
	answer, err := a.gen.Generate(ctx, d.system, retrievalPrompt(request, convContext, ""))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// handleRetrieval serves the technical and healthcare categories: search
// the category's collection, expand hits into excerpts, answer with the
// excerpt blocks in the prompt. An empty or failed retrieval answers from
// the model alone.
func (a *Assistant) handleRetrieval(ctx context.Context, category Category, request, convContext string) (string, error) {
	d := descriptorFor(category)
	blocks := a.retrieve(ctx, d, request)

	answer, err := a.gen.Generate(ctx, d.system, retrievalPrompt(request, convContext, blocks))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

func (a *Assistant) handleConversational(ctx context.Context, request, convContext string) (string, error) {
	contact, err := a.resolver.Resolve(ctx, request)
	if err != nil {
		return "", fmt.Errorf("identifying contact: %w", err)
	}

	d := descriptorFor(Conversational)
	d.collection = contact.Key
	blocks := a.retrieve(ctx, d, request)

	answer, err := a.gen.Generate(ctx, d.system, retrievalPrompt(request, convContext, blocks))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// handleAdministrative resolves the recipient, drafts the message with the
// contact's most recent conversation summary as context, and sends exactly
// one text.
func (a *Assistant) handleAdministrative(ctx context.Context, request string) (string, error) {
	contact, err := a.resolver.Resolve(ctx, request)
	if err != nil {
		return "", fmt.Errorf("identifying contact: %w", err)
	}

	system := fmt.Sprintf(composeTextSystemPrompt, a.ownerName, a.ownerName)
	message, err := a.gen.Generate(ctx, system, composeTextPrompt(request, contact.FullName(), contact.RecentSummary))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if err := a.messenger.Send(ctx, contact.Phone, message); err != nil {
		return "", fmt.Errorf("sending text to %s: %w", contact.FullName(), err)
	}

	return fmt.Sprintf("Sent your text to %s.", contact.FullName()), nil
}

// retrieve searches the descriptor's collection and renders excerpt
// blocks. Retrieval problems are logged and degrade to no blocks; an
// answer without context beats no answer.
func (a *Assistant) retrieve(ctx context.Context, d descriptor, request string) string {
	if d.collection == "" {
		return ""
	}

	hits, err := a.store.Search(ctx, d.collection, request, corpus.WithTopK(a.topK))
	if err != nil {
		a.logger.Warn("retrieval failed, answering without excerpts",
			"collection", d.collection, "error", err)
		return ""
	}
	if len(hits) == 0 {
		a.logger.Debug("retrieval empty", "collection", d.collection)
		return ""
	}

	return excerptBlocks(d.label, a.assembler.Assemble(ctx, hits))
}
