package corpus

import "strings"

// Split breaks text into sentence-aligned chunks of at least minLength
// characters. Sentences are never split: the chunker accumulates whole
// sentences and closes a chunk as soon as the accumulated text reaches
// minLength. A trailing remainder shorter than minLength still becomes the
// final chunk, so no input text is ever dropped.
//
// A single sentence longer than minLength forms its own chunk. Text without
// terminal punctuation is treated as one sentence.
func Split(text string, minLength int) []string {
	if minLength < 1 {
		minLength = 1
	}

	var chunks []string
	var buf strings.Builder
	for _, sentence := range sentences(text) {
		buf.WriteString(sentence)
		if chunk := strings.TrimSpace(buf.String()); len(chunk) >= minLength {
			chunks = append(chunks, chunk)
			buf.Reset()
		}
	}
	if chunk := strings.TrimSpace(buf.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// sentences splits text after runs of terminal punctuation (. ! ?), keeping
// the punctuation and any following whitespace attached to the sentence.
func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminal(text[i]) {
			continue
		}
		for i+1 < len(text) && isTerminal(text[i+1]) {
			i++
		}
		end := i + 1
		for end < len(text) && isSpace(text[end]) {
			end++
		}
		out = append(out, text[start:end])
		start = end
		i = end - 1
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
