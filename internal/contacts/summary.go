package contacts

import (
	"context"
	"fmt"
	"strings"
)

const (
	summarizeSystemPrompt = `You summarize personal conversations. Write a short paragraph ` +
		`covering who said what, decisions made, and anything worth following up on. ` +
		`Use third person and keep names as they appear.`

	mergeSystemPrompt = `You maintain a running summary of all past conversations with one ` +
		`person. Merge the existing summary with the latest conversation summary into a ` +
		`single updated summary. Keep it compact; prefer recent details when they supersede ` +
		`older ones.`
)

// Summarizer maintains per-contact conversation summaries.
type Summarizer struct {
	gen Generator
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// Summarize produces a summary of one conversation transcript.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", nil
	}
	out, err := s.gen.Generate(ctx, summarizeSystemPrompt, transcript)
	if err != nil {
		return "", fmt.Errorf("summarizing conversation: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Merge folds the latest conversation summary into the running summary.
// With no existing summary the latest stands alone.
func (s *Summarizer) Merge(ctx context.Context, existing, latest string) (string, error) {
	if strings.TrimSpace(existing) == "" {
		return latest, nil
	}
	if strings.TrimSpace(latest) == "" {
		return existing, nil
	}

	user := fmt.Sprintf("Existing summary:\n%s\n\nLatest conversation summary:\n%s", existing, latest)
	out, err := s.gen.Generate(ctx, mergeSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("merging summaries: %w", err)
	}
	return strings.TrimSpace(out), nil
}
