package corpus

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minLength int
		want      []string
	}{
		{
			name:      "closes chunk once buffer reaches minimum",
			text:      "The sky is blue. Grass is green. Water is wet.",
			minLength: 20,
			want: []string{
				"The sky is blue. Grass is green.",
				"Water is wet.",
			},
		},
		{
			name:      "empty input",
			text:      "",
			minLength: 20,
			want:      nil,
		},
		{
			name:      "whitespace only",
			text:      "  \n\t ",
			minLength: 20,
			want:      nil,
		},
		{
			name:      "single long sentence is its own chunk",
			text:      "This one sentence is comfortably longer than the minimum length.",
			minLength: 10,
			want:      []string{"This one sentence is comfortably longer than the minimum length."},
		},
		{
			name:      "short remainder kept as final chunk",
			text:      "A full first sentence here. Tiny.",
			minLength: 20,
			want:      []string{"A full first sentence here.", "Tiny."},
		},
		{
			name:      "no terminal punctuation treated as one sentence",
			text:      "a fragment without any punctuation at all",
			minLength: 10,
			want:      []string{"a fragment without any punctuation at all"},
		},
		{
			name:      "punctuation runs stay with the sentence",
			text:      "Really?! Yes... absolutely certain of it. Good then.",
			minLength: 15,
			want:      []string{"Really?! Yes...", "absolutely certain of it.", "Good then."},
		},
		{
			name:      "each sentence a chunk at minimum one",
			text:      "One. Two. Three.",
			minLength: 1,
			want:      []string{"One.", "Two.", "Three."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.minLength)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Every non-final chunk must meet the minimum length, and joining the chunks
// must reproduce the input modulo whitespace.
func TestSplitProperties(t *testing.T) {
	text := "Alpha beta gamma delta. Epsilon zeta eta! Theta iota kappa? " +
		"Lambda mu nu xi omicron pi. Rho sigma tau. Upsilon phi chi psi omega."
	const minLength = 40

	chunks := Split(text, minLength)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	for i, c := range chunks[:len(chunks)-1] {
		if len(c) < minLength {
			t.Errorf("chunk %d shorter than minimum: %q", i, c)
		}
	}

	joined := strings.Join(strings.Fields(strings.Join(chunks, " ")), " ")
	original := strings.Join(strings.Fields(text), " ")
	if joined != original {
		t.Errorf("content lost:\n got %q\nwant %q", joined, original)
	}
}
