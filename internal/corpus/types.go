// Package corpus stores and retrieves embedded text chunks in PostgreSQL.
//
// A document is an ordered sequence of chunks sharing (collection,
// document_id); seq preserves the chunk order from ingestion. Embeddings are
// L2-normalized before persisting and before querying, so the pgvector inner
// product equals cosine similarity.
package corpus

import "time"

// VectorDimension is the embedding width of the chunks table.
// gemini-embedding-001 vectors are truncated to this dimensionality.
const VectorDimension = 768

// Chunk is one stored piece of a document.
type Chunk struct {
	Collection string
	DocumentID int64
	Seq        int32
	Content    string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// Hit is a search result: a chunk plus its similarity to the query.
type Hit struct {
	Chunk

	// Score is the cosine similarity to the query, higher is closer.
	Score float64
}
