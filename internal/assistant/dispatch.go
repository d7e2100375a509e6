package assistant

// Collections consumed by the retrieval-backed categories. Ingestion writes
// to the same names; see the ingest package.
const (
	PapersCollection = "ResearchPapers"
	HealthCollection = "HealthArticles"
)

// descriptor describes how one category is served: which collection feeds
// it, how excerpts are labeled, and which system prompt frames the answer.
// An empty Collection means the category retrieves nothing.
type descriptor struct {
	collection string
	label      string
	system     string
}

// descriptorFor returns the dispatch descriptor for a category. The switch
// is exhaustive over the Category enum; adding a category without a
// descriptor is a compile-visible gap here, not a silent fallthrough.
func descriptorFor(c Category) descriptor {
	switch c {
	case Technical:
		return descriptor{
			collection: PapersCollection,
			label:      "paper title",
			system:     technicalSystemPrompt,
		}
	case Healthcare:
		return descriptor{
			collection: HealthCollection,
			label:      "article title",
			system:     healthcareSystemPrompt,
		}
	case Conversational:
		// The collection is the resolved contact's key, filled at
		// dispatch time.
		return descriptor{
			label:  "conversation",
			system: conversationalSystemPrompt,
		}
	case Administrative:
		return descriptor{system: composeTextSystemPrompt}
	case Normal:
		return descriptor{system: normalSystemPrompt}
	default:
		return descriptor{system: normalSystemPrompt}
	}
}
