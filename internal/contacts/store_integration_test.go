package contacts

import (
	"context"
	"errors"
	"testing"

	"github.com/supervisionhq/jarvis/internal/log"
	"github.com/supervisionhq/jarvis/internal/testutil"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)
	return NewStore(tdb.Pool, log.NewNop())
}

func TestStoreCRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "Alex", "Chen", "+15550001")
	if err != nil {
		t.Fatal(err)
	}
	if created.Key != "AlexChen" {
		t.Errorf("key = %q", created.Key)
	}
	if created.Phone != "+15550001" {
		t.Errorf("phone = %q", created.Phone)
	}

	got, err := store.Get(ctx, "AlexChen")
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName() != "Alex Chen" {
		t.Errorf("full name = %q", got.FullName())
	}

	// Re-creating updates the phone but keeps summaries.
	if err := store.UpdateSummaries(ctx, "AlexChen", "knows about go", "talked about hiking"); err != nil {
		t.Fatal(err)
	}
	updated, err := store.Create(ctx, "Alex", "Chen", "+15559999")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Phone != "+15559999" {
		t.Errorf("phone after upsert = %q", updated.Phone)
	}
	if updated.Summary != "knows about go" || updated.RecentSummary != "talked about hiking" {
		t.Errorf("summaries lost on upsert: %+v", updated)
	}

	if _, err := store.Create(ctx, "Priya", "Patel", ""); err != nil {
		t.Fatal(err)
	}
	all, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("listed %d contacts, want 2", len(all))
	}

	if err := store.Delete(ctx, "AlexChen"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "AlexChen"); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("Get after delete = %v, want ErrContactNotFound", err)
	}
	if err := store.Delete(ctx, "AlexChen"); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("second delete = %v, want ErrContactNotFound", err)
	}
}

func TestStoreUpdateSummariesUnknownContact(t *testing.T) {
	store := setupStore(t)

	err := store.UpdateSummaries(context.Background(), "Nobody", "s", "r")
	if !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("err = %v, want ErrContactNotFound", err)
	}
}
