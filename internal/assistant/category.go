package assistant

import "strings"

// Category is the closed set of request kinds the router dispatches on.
type Category int

const (
	// Normal handles general questions with no retrieval.
	Normal Category = iota

	// Administrative resolves a contact and sends a text message.
	Administrative

	// Technical answers with excerpts from the research paper corpus.
	Technical

	// Healthcare answers with excerpts from the health article corpus.
	Healthcare

	// Conversational answers from past conversations with a contact.
	Conversational
)

// String returns the title-cased label reported to callers.
func (c Category) String() string {
	switch c {
	case Administrative:
		return "Administrative"
	case Technical:
		return "Technical"
	case Healthcare:
		return "Healthcare"
	case Conversational:
		return "Conversational"
	default:
		return "Normal"
	}
}

// ParseCategory maps a classifier label to a Category. Matching is
// case-insensitive and tolerant of surrounding whitespace and punctuation.
// An unrecognized label reports ok=false; callers fall back to Normal.
func ParseCategory(label string) (Category, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(label))
	cleaned = strings.Trim(cleaned, ".!\"'")

	switch cleaned {
	case "normal":
		return Normal, true
	case "administrative":
		return Administrative, true
	case "technical":
		return Technical, true
	case "healthcare":
		return Healthcare, true
	case "conversational":
		return Conversational, true
	default:
		return Normal, false
	}
}
