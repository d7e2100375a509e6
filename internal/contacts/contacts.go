// Package contacts manages the contact registry and resolves natural
// language references ("text my mom's friend Alex") to stored contacts.
//
// Each contact owns the conversation collection named after its canonical
// key; removing a contact removes that collection with it.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrContactNotFound indicates no stored contact matches the reference.
var ErrContactNotFound = errors.New("contact not found")

// Contact is one entry in the registry.
type Contact struct {
	Key           string // canonical identifier, FirstLast concatenated
	FirstName     string
	LastName      string
	Phone         string
	Summary       string // running summary of all past conversations
	RecentSummary string // summary of the most recent conversation only
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName returns "First Last".
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CanonicalKey derives the registry key from a contact's names:
// first and last name concatenated with spaces removed, e.g. "AlexChen".
// The key doubles as the contact's conversation collection name.
func CanonicalKey(firstName, lastName string) string {
	return strings.ReplaceAll(firstName+lastName, " ", "")
}

// DB is the subset of pgxpool.Pool the registry uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed contact registry.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DB
	logger *slog.Logger
}

// NewStore creates a Store. A nil logger falls back to slog.Default().
func NewStore(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Create inserts or updates a contact. The key is derived from the names;
// an existing contact with the same key has its phone updated and its
// summaries preserved.
func (s *Store) Create(ctx context.Context, firstName, lastName, phone string) (Contact, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return Contact{}, errors.New("first name must not be empty")
	}

	key := CanonicalKey(firstName, lastName)
	_, err := s.db.Exec(ctx,
		`INSERT INTO contacts (key, first_name, last_name, phone)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE
		 SET phone = EXCLUDED.phone, updated_at = now()`,
		key, firstName, lastName, phone,
	)
	if err != nil {
		return Contact{}, fmt.Errorf("creating contact %q: %w", key, err)
	}

	s.logger.Debug("stored contact", "key", key)
	return s.Get(ctx, key)
}

// Get returns the contact with the given canonical key.
func (s *Store) Get(ctx context.Context, key string) (Contact, error) {
	var c Contact
	err := s.db.QueryRow(ctx,
		`SELECT key, first_name, last_name, phone, summary, recent_summary, created_at, updated_at
		 FROM contacts WHERE key = $1`, key,
	).Scan(&c.Key, &c.FirstName, &c.LastName, &c.Phone, &c.Summary, &c.RecentSummary, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, fmt.Errorf("%w: %q", ErrContactNotFound, key)
	}
	if err != nil {
		return Contact{}, fmt.Errorf("loading contact %q: %w", key, err)
	}
	return c, nil
}

// List returns all contacts ordered by key.
func (s *Store) List(ctx context.Context) ([]Contact, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, first_name, last_name, phone, summary, recent_summary, created_at, updated_at
		 FROM contacts ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Key, &c.FirstName, &c.LastName, &c.Phone, &c.Summary, &c.RecentSummary, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading contact rows: %w", err)
	}
	return contacts, nil
}

// UpdateSummaries replaces the running and most-recent conversation
// summaries of a contact.
func (s *Store) UpdateSummaries(ctx context.Context, key, summary, recentSummary string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE contacts SET summary = $2, recent_summary = $3, updated_at = now() WHERE key = $1`,
		key, summary, recentSummary,
	)
	if err != nil {
		return fmt.Errorf("updating summaries for %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrContactNotFound, key)
	}
	return nil
}

// Delete removes a contact from the registry. The caller is responsible for
// deleting the contact's conversation collection alongside.
func (s *Store) Delete(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM contacts WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("deleting contact %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrContactNotFound, key)
	}
	s.logger.Debug("deleted contact", "key", key)
	return nil
}
