package corpus

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"google.golang.org/genai"

	"github.com/supervisionhq/jarvis/internal/log"
	"github.com/supervisionhq/jarvis/internal/testutil"
)

// The store's Embedder interface must stay satisfiable by both the test
// mock and a registered genkit embedder.
var (
	_ Embedder = (*testutil.MockEmbedder)(nil)
	_ Embedder = ai.Embedder(nil)
)

func TestAddDocumentEmbeddingFailureWritesNothing(t *testing.T) {
	embedder := testutil.NewMockEmbedder(VectorDimension)
	embedder.FailWith(errors.New("quota exceeded"))

	// The store must fail before touching the database; a nil DB proves it.
	store := NewStore(nil, embedder, log.NewNop())

	_, err := store.AddDocument(context.Background(), "Papers", []string{"a", "b"}, nil)
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
	}
}

func TestAddDocumentValidation(t *testing.T) {
	embedder := testutil.NewMockEmbedder(VectorDimension)
	store := NewStore(nil, embedder, log.NewNop())
	ctx := context.Background()

	if _, err := store.AddDocument(ctx, "", []string{"a"}, nil); err == nil {
		t.Error("empty collection accepted")
	}
	if _, err := store.AddDocument(ctx, "Papers", nil, nil); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestAddTextEmptyAfterChunking(t *testing.T) {
	embedder := testutil.NewMockEmbedder(VectorDimension)
	store := NewStore(nil, embedder, log.NewNop())

	_, _, err := store.AddText(context.Background(), "Papers", "   \n ", 256, nil)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestSearchValidation(t *testing.T) {
	embedder := testutil.NewMockEmbedder(VectorDimension)
	store := NewStore(nil, embedder, log.NewNop())
	ctx := context.Background()

	if _, err := store.Search(ctx, "Papers", "q", WithTopK(0)); err == nil {
		t.Error("top-k 0 accepted")
	}
	if _, err := store.Search(ctx, "Papers", "q", WithTopK(-3)); err == nil {
		t.Error("negative top-k accepted")
	}
	if _, err := store.Search(ctx, "", "q"); err == nil {
		t.Error("empty collection accepted")
	}
}

// captureEmbedder records the embed request and answers with vectors of the
// schema's width.
type captureEmbedder struct {
	req *ai.EmbedRequest
}

func (c *captureEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	c.req = req
	embeddings := make([]*ai.Embedding, len(req.Input))
	for i := range req.Input {
		v := make([]float32, VectorDimension)
		v[i%VectorDimension] = 1
		embeddings[i] = &ai.Embedding{Embedding: v}
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

func TestEmbedTextsRequestsSchemaDimensionality(t *testing.T) {
	embedder := &captureEmbedder{}
	store := NewStore(nil, embedder, log.NewNop())

	vectors, err := store.embedTexts(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embedTexts: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}

	opts, ok := embedder.req.Options.(*genai.EmbedContentConfig)
	if !ok {
		t.Fatalf("request options = %T, want *genai.EmbedContentConfig", embedder.req.Options)
	}
	if opts.OutputDimensionality == nil || *opts.OutputDimensionality != VectorDimension {
		t.Errorf("output dimensionality = %v, want %d", opts.OutputDimensionality, VectorDimension)
	}
}

func TestEmbedTextsRejectsWrongDimension(t *testing.T) {
	// A model that ignores the dimensionality option must fail before its
	// oversized vectors reach the fixed-width embedding column.
	embedder := testutil.NewMockEmbedder(3072)
	store := NewStore(nil, embedder, log.NewNop())
	ctx := context.Background()

	_, err := store.AddDocument(ctx, "Papers", []string{"a"}, nil)
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
	}
	if !strings.Contains(err.Error(), "3072") {
		t.Errorf("error %q does not report the bad width", err)
	}

	if _, err := store.Search(ctx, "Papers", "q"); !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("search err = %v, want ErrEmbeddingFailed", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      []float32
		wantErr bool
	}{
		{"unit output", []float32{3, 4}, false},
		{"already normalized", []float32{1, 0}, false},
		{"zero vector rejected", []float32{0, 0, 0}, true},
		{"empty vector rejected", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := normalize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			var sum float64
			for _, x := range out {
				sum += float64(x) * float64(x)
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Errorf("norm^2 = %v, want 1", sum)
			}
		})
	}
}

func TestNormalizePreservesDirection(t *testing.T) {
	out, err := normalize([]float32{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(out[0])-0.6) > 1e-6 || math.Abs(float64(out[1])-0.8) > 1e-6 {
		t.Errorf("normalize([3 4]) = %v, want [0.6 0.8]", out)
	}
}
