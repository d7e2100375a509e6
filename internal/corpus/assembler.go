package corpus

import (
	"context"
	"log/slog"
	"strings"
)

// RangeFetcher is the part of the store the assembler needs.
type RangeFetcher interface {
	FetchRange(ctx context.Context, collection string, documentID int64, lo, hi int32) ([]Chunk, error)
}

// Excerpt is a contiguous run of chunk text around a search hit, carrying
// the hit's provenance metadata and similarity score.
type Excerpt struct {
	Text     string
	Metadata map[string]string
	Score    float64
}

// Assembler expands search hits into excerpts by pulling the chunks
// surrounding each hit. Hits from the same neighborhood produce separate,
// possibly overlapping excerpts; overlap is left to the language model to
// reconcile.
type Assembler struct {
	fetcher RangeFetcher
	window  int32
	logger  *slog.Logger
}

// NewAssembler creates an Assembler pulling window chunks on each side of a
// hit. A window of 0 reproduces the hit chunk alone. A nil logger falls
// back to slog.Default().
func NewAssembler(fetcher RangeFetcher, window int32, logger *slog.Logger) *Assembler {
	if window < 0 {
		window = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{fetcher: fetcher, window: window, logger: logger}
}

// Assemble returns one excerpt per hit, in hit order. A failed neighborhood
// fetch degrades that hit to its own chunk text rather than failing the
// whole assembly.
func (a *Assembler) Assemble(ctx context.Context, hits []Hit) []Excerpt {
	excerpts := make([]Excerpt, 0, len(hits))
	for _, hit := range hits {
		excerpts = append(excerpts, Excerpt{
			Text:     a.neighborhood(ctx, hit),
			Metadata: hit.Metadata,
			Score:    hit.Score,
		})
	}
	return excerpts
}

func (a *Assembler) neighborhood(ctx context.Context, hit Hit) string {
	chunks, err := a.fetcher.FetchRange(ctx, hit.Collection, hit.DocumentID, hit.Seq-a.window, hit.Seq+a.window)
	if err != nil {
		a.logger.Warn("neighborhood fetch failed, using hit chunk only",
			"collection", hit.Collection, "document_id", hit.DocumentID, "seq", hit.Seq, "error", err)
		return hit.Content
	}
	if len(chunks) == 0 {
		return hit.Content
	}

	// Chunks are contiguous slices of one document; concatenate them
	// directly rather than injecting separators the source never had.
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Content)
	}
	return sb.String()
}
