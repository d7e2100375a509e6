package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/supervisionhq/jarvis/internal/log"
)

// fakeFetcher serves ranges from an in-memory document.
type fakeFetcher struct {
	chunks map[int64][]string // documentID -> ordered chunk contents
	err    error
}

func (f *fakeFetcher) FetchRange(_ context.Context, collection string, documentID int64, lo, hi int32) ([]Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := f.chunks[documentID]
	if lo < 0 {
		lo = 0
	}
	var out []Chunk
	for seq := lo; seq <= hi && int(seq) < len(doc); seq++ {
		out = append(out, Chunk{
			Collection: collection,
			DocumentID: documentID,
			Seq:        seq,
			Content:    doc[seq],
		})
	}
	return out, nil
}

func TestAssemble(t *testing.T) {
	fetcher := &fakeFetcher{chunks: map[int64][]string{
		0: {"c0", "c1", "c2", "c3", "c4"},
	}}

	tests := []struct {
		name   string
		window int32
		hit    Hit
		want   string
	}{
		{
			name:   "interior hit expands both sides",
			window: 1,
			hit:    Hit{Chunk: Chunk{Collection: "Papers", DocumentID: 0, Seq: 2, Content: "c2"}},
			want:   "c1c2c3",
		},
		{
			name:   "first chunk clips the lower bound",
			window: 1,
			hit:    Hit{Chunk: Chunk{Collection: "Papers", DocumentID: 0, Seq: 0, Content: "c0"}},
			want:   "c0c1",
		},
		{
			name:   "last chunk clips the upper bound",
			window: 1,
			hit:    Hit{Chunk: Chunk{Collection: "Papers", DocumentID: 0, Seq: 4, Content: "c4"}},
			want:   "c3c4",
		},
		{
			name:   "zero window returns the hit alone",
			window: 0,
			hit:    Hit{Chunk: Chunk{Collection: "Papers", DocumentID: 0, Seq: 2, Content: "c2"}},
			want:   "c2",
		},
		{
			name:   "wide window takes the whole document",
			window: 10,
			hit:    Hit{Chunk: Chunk{Collection: "Papers", DocumentID: 0, Seq: 2, Content: "c2"}},
			want:   "c0c1c2c3c4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(fetcher, tt.window, log.NewNop())
			excerpts := a.Assemble(context.Background(), []Hit{tt.hit})
			if len(excerpts) != 1 {
				t.Fatalf("got %d excerpts, want 1", len(excerpts))
			}
			if excerpts[0].Text != tt.want {
				t.Errorf("excerpt = %q, want %q", excerpts[0].Text, tt.want)
			}
		})
	}
}

func TestAssembleOneExcerptPerHit(t *testing.T) {
	fetcher := &fakeFetcher{chunks: map[int64][]string{
		0: {"a0", "a1", "a2"},
		1: {"b0", "b1"},
	}}
	a := NewAssembler(fetcher, 1, log.NewNop())

	hits := []Hit{
		{Chunk: Chunk{Collection: "C", DocumentID: 0, Seq: 1, Content: "a1"}, Score: 0.9},
		{Chunk: Chunk{Collection: "C", DocumentID: 1, Seq: 0, Content: "b0"}, Score: 0.5},
		{Chunk: Chunk{Collection: "C", DocumentID: 0, Seq: 2, Content: "a2"}, Score: 0.4},
	}

	excerpts := a.Assemble(context.Background(), hits)
	if len(excerpts) != 3 {
		t.Fatalf("got %d excerpts, want 3", len(excerpts))
	}

	// Order and overlap follow the hit list; neighboring hits are not merged.
	wantTexts := []string{"a0a1a2", "b0b1", "a1a2"}
	for i, want := range wantTexts {
		if excerpts[i].Text != want {
			t.Errorf("excerpt %d = %q, want %q", i, excerpts[i].Text, want)
		}
	}
	if excerpts[0].Score != 0.9 {
		t.Errorf("score not carried: %v", excerpts[0].Score)
	}
}

func TestAssembleDegradesOnFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	a := NewAssembler(fetcher, 1, log.NewNop())

	hits := []Hit{{Chunk: Chunk{Collection: "C", DocumentID: 0, Seq: 1, Content: "the hit itself"}}}
	excerpts := a.Assemble(context.Background(), hits)
	if len(excerpts) != 1 {
		t.Fatalf("got %d excerpts, want 1", len(excerpts))
	}
	if excerpts[0].Text != "the hit itself" {
		t.Errorf("excerpt = %q, want hit content", excerpts[0].Text)
	}
}

func TestNewAssemblerClampsNegativeWindow(t *testing.T) {
	fetcher := &fakeFetcher{chunks: map[int64][]string{0: {"c0", "c1", "c2"}}}
	a := NewAssembler(fetcher, -5, log.NewNop())

	hits := []Hit{{Chunk: Chunk{Collection: "C", DocumentID: 0, Seq: 1, Content: "c1"}}}
	excerpts := a.Assemble(context.Background(), hits)
	if excerpts[0].Text != "c1" {
		t.Errorf("excerpt = %q, want %q", excerpts[0].Text, "c1")
	}
}
