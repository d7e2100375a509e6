package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Generator produces a completion for a system and user prompt pair.
// Defined here by the consumer; satisfied by assistant.ModelGenerator and
// by testutil.MockLLM.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Lister is the part of the registry the resolver needs.
type Lister interface {
	List(ctx context.Context) ([]Contact, error)
}

const resolverSystemPrompt = `You match a request to exactly one person from a contact list. ` +
	`Respond with one full name copied from the list and nothing else. ` +
	`A first name alone is not a valid answer; always reply with the full name. ` +
	`If several contacts could match, pick the most likely one.`

// Resolver maps a natural language reference to a stored contact by asking
// the model to choose from the registry, then verifying the answer against
// the registry before trusting it.
type Resolver struct {
	gen    Generator
	store  Lister
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to slog.Default().
func NewResolver(gen Generator, store Lister, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{gen: gen, store: store, logger: logger}
}

// Resolve returns the contact the request refers to.
//
// The model's raw output is accepted only if it identifies exactly one
// contact: an exact full-name match, else a unique case-insensitive match,
// else a unique case-insensitive prefix match. Anything else returns
// ErrContactNotFound; the model's answer is never used to index the
// registry directly.
func (r *Resolver) Resolve(ctx context.Context, request string) (Contact, error) {
	registry, err := r.store.List(ctx)
	if err != nil {
		return Contact{}, fmt.Errorf("listing contacts: %w", err)
	}
	if len(registry) == 0 {
		return Contact{}, fmt.Errorf("%w: registry is empty", ErrContactNotFound)
	}

	var names strings.Builder
	for _, c := range registry {
		names.WriteString("- ")
		names.WriteString(c.FullName())
		names.WriteString("\n")
	}

	user := fmt.Sprintf("Request: %s\n\nContact list:\n%s", request, names.String())
	answer, err := r.gen.Generate(ctx, resolverSystemPrompt, user)
	if err != nil {
		return Contact{}, fmt.Errorf("resolving contact: %w", err)
	}

	answer = strings.TrimSpace(answer)
	r.logger.Debug("resolver answer", "answer", answer)

	contact, ok := match(registry, answer)
	if !ok {
		return Contact{}, fmt.Errorf("%w: model answered %q", ErrContactNotFound, answer)
	}
	return contact, nil
}

// match applies the acceptance policy to the model's raw answer.
func match(registry []Contact, answer string) (Contact, bool) {
	if answer == "" {
		return Contact{}, false
	}

	for _, c := range registry {
		if c.FullName() == answer {
			return c, true
		}
	}

	var found []Contact
	for _, c := range registry {
		if strings.EqualFold(c.FullName(), answer) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	if len(found) > 1 {
		return Contact{}, false
	}

	lower := strings.ToLower(answer)
	for _, c := range registry {
		if strings.HasPrefix(strings.ToLower(c.FullName()), lower) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return Contact{}, false
}
