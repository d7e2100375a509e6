package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"
)

var (
	// ErrEmbeddingFailed indicates the embedder returned an error or an
	// unusable vector. Nothing is persisted when this is returned.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmptyDocument indicates there was no text to store after chunking.
	ErrEmptyDocument = errors.New("empty document")
)

// searchTimeout bounds a single vector search, embedding included.
const searchTimeout = 10 * time.Second

// DB is the subset of pgxpool.Pool the store uses.
// Defined by the consumer so tests can substitute a lighter implementation.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Embedder is the embedding operation the store needs. Satisfied by any
// registered genkit ai.Embedder.
type Embedder interface {
	Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error)
}

// Store manages embedded chunks grouped into collections.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	db       DB
	embedder Embedder
	logger   *slog.Logger
}

// NewStore creates a Store. A nil logger falls back to slog.Default().
func NewStore(db DB, embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, embedder: embedder, logger: logger}
}

// AddText chunks text with the given minimum length and stores the chunks as
// one new document in the collection. It returns the assigned document id
// and the number of chunks written. Text that chunks to nothing returns
// ErrEmptyDocument and writes no rows.
func (s *Store) AddText(ctx context.Context, collection, text string, minLength int, metadata map[string]string) (int64, int, error) {
	chunks := Split(text, minLength)
	if len(chunks) == 0 {
		return 0, 0, fmt.Errorf("%w: collection %q", ErrEmptyDocument, collection)
	}
	id, err := s.AddDocument(ctx, collection, chunks, metadata)
	if err != nil {
		return 0, 0, err
	}
	return id, len(chunks), nil
}

// AddDocument stores the given chunk texts as one document. All chunks are
// embedded before anything is written, so an embedding failure leaves the
// collection untouched. Document ids are assigned max+1 per collection under
// an advisory transaction lock, which serializes concurrent writers on the
// same collection without blocking writers on other collections.
func (s *Store) AddDocument(ctx context.Context, collection string, texts []string, metadata map[string]string) (int64, error) {
	if collection == "" {
		return 0, errors.New("collection must not be empty")
	}
	if len(texts) == 0 {
		return 0, fmt.Errorf("%w: collection %q", ErrEmptyDocument, collection)
	}

	vectors, err := s.embedTexts(ctx, texts)
	if err != nil {
		return 0, err
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("marshaling metadata: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "collection", collection, "error", rbErr)
		}
	}()

	// Serialize id assignment per collection. hashtext keys the lock off the
	// collection name; unrelated collections proceed concurrently.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, collection); err != nil {
		return 0, fmt.Errorf("acquiring collection lock: %w", err)
	}

	var docID int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(document_id) + 1, 0) FROM chunks WHERE collection = $1`,
		collection,
	).Scan(&docID)
	if err != nil {
		return 0, fmt.Errorf("assigning document id: %w", err)
	}

	for i, text := range texts {
		_, err := tx.Exec(ctx,
			`INSERT INTO chunks (collection, document_id, seq, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			collection, docID, int32(i), text, metadataJSON, vectors[i],
		)
		if err != nil {
			return 0, fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing document: %w", err)
	}

	s.logger.Debug("stored document",
		"collection", collection, "document_id", docID, "chunks", len(texts))
	return docID, nil
}

// SearchOption configures a Search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK int
}

// WithTopK sets the number of nearest chunks to return. Default 3.
func WithTopK(k int) SearchOption {
	return func(cfg *searchConfig) { cfg.topK = k }
}

// Search returns the topK chunks of the collection closest to the query,
// ordered by similarity descending. Ties are broken by document id, then
// seq, so equal inputs always return results in the same order. Searching a
// collection with no rows returns an empty slice, not an error.
func (s *Store) Search(ctx context.Context, collection, query string, opts ...SearchOption) ([]Hit, error) {
	cfg := searchConfig{topK: 3}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.topK < 1 {
		return nil, fmt.Errorf("top-k must be at least 1, got %d", cfg.topK)
	}
	if collection == "" {
		return nil, errors.New("collection must not be empty")
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vectors, err := s.embedTexts(queryCtx, []string{query})
	if err != nil {
		return nil, err
	}

	// <#> is negative inner product; ascending order means most similar
	// first. Embeddings are normalized, so the similarity is cosine.
	rows, err := s.db.Query(queryCtx,
		`SELECT document_id, seq, content, metadata, created_at, (embedding <#> $2) * -1
		 FROM chunks
		 WHERE collection = $1
		 ORDER BY embedding <#> $2 ASC, document_id ASC, seq ASC
		 LIMIT $3`,
		collection, vectors[0], cfg.topK,
	)
	if err != nil {
		return nil, fmt.Errorf("searching collection %q: %w", collection, err)
	}
	defer rows.Close()

	return s.scanHits(rows, collection)
}

// FetchRange returns the chunks of a document with seq in [lo, hi], ordered
// by seq. Bounds are clipped: a negative lo reads from the first chunk and
// an hi past the last chunk reads to the end.
func (s *Store) FetchRange(ctx context.Context, collection string, documentID int64, lo, hi int32) ([]Chunk, error) {
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		return nil, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT document_id, seq, content, metadata, created_at
		 FROM chunks
		 WHERE collection = $1 AND document_id = $2 AND seq BETWEEN $3 AND $4
		 ORDER BY seq ASC`,
		collection, documentID, lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching range: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		c, err := s.scanChunk(rows, collection)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading range rows: %w", err)
	}
	return chunks, nil
}

// DeleteCollection removes every chunk in the collection. Deleting a
// collection that does not exist is a no-op.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM chunks WHERE collection = $1`, collection)
	if err != nil {
		return fmt.Errorf("deleting collection %q: %w", collection, err)
	}
	s.logger.Debug("deleted collection", "collection", collection, "chunks", tag.RowsAffected())
	return nil
}

// Count returns the number of chunks stored in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = $1`, collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting collection %q: %w", collection, err)
	}
	return n, nil
}

// embedTexts embeds all texts in a single request and returns L2-normalized
// vectors, one per input. The request asks for VectorDimension output so the
// vectors fit the chunks table regardless of the model's native width.
func (s *Store) embedTexts(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	docs := make([]*ai.Document, len(texts))
	for i, t := range texts {
		docs[i] = &ai.Document{Content: []*ai.Part{ai.NewTextPart(t)}}
	}

	dim := int32(VectorDimension)
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrEmbeddingFailed, len(resp.Embeddings), len(texts))
	}

	vectors := make([]pgvector.Vector, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) != VectorDimension {
			return nil, fmt.Errorf("%w: text %d: got %d dimensions, want %d",
				ErrEmbeddingFailed, i, len(emb.Embedding), VectorDimension)
		}
		normalized, err := normalize(emb.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: text %d: %v", ErrEmbeddingFailed, i, err)
		}
		vectors[i] = pgvector.NewVector(normalized)
	}
	return vectors, nil
}

// normalize scales a vector to unit length.
func normalize(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, errors.New("empty vector")
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, errors.New("zero-length vector")
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

func (s *Store) scanHits(rows pgx.Rows, collection string) ([]Hit, error) {
	var hits []Hit
	for rows.Next() {
		var h Hit
		var metadataJSON []byte
		if err := rows.Scan(&h.DocumentID, &h.Seq, &h.Content, &metadataJSON, &h.CreatedAt, &h.Score); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		h.Collection = collection
		h.Metadata = parseMetadata(metadataJSON, s.logger)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return hits, nil
}

func (s *Store) scanChunk(rows pgx.Rows, collection string) (Chunk, error) {
	var c Chunk
	var metadataJSON []byte
	if err := rows.Scan(&c.DocumentID, &c.Seq, &c.Content, &metadataJSON, &c.CreatedAt); err != nil {
		return Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	c.Collection = collection
	c.Metadata = parseMetadata(metadataJSON, s.logger)
	return c, nil
}

func parseMetadata(raw []byte, logger *slog.Logger) map[string]string {
	metadata := make(map[string]string)
	if len(raw) == 0 {
		return metadata
	}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		logger.Warn("failed to parse chunk metadata", "error", err)
	}
	return metadata
}
