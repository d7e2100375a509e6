package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/supervisionhq/jarvis/internal/log"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Why Sleep Matters</title></head>
<body>
<nav>Home | About</nav>
<article>
<h1>Why Sleep Matters</h1>
<p>Sleep is when the brain consolidates memory and clears metabolic waste.
Adults who regularly sleep fewer than seven hours show measurable declines
in attention and mood. The effect compounds over consecutive short nights.</p>
<p>Good sleep hygiene starts with a consistent schedule and a dark, cool
room. Caffeine after mid-afternoon delays sleep onset for most people.</p>
</article>
<script>trackPageView();</script>
<footer>Copyright notice</footer>
</body>
</html>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewFetcher(log.NewNop())
	article, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if article.URL != srv.URL {
		t.Errorf("URL = %q, want %q", article.URL, srv.URL)
	}
	if !strings.Contains(article.Text, "consolidates memory") {
		t.Errorf("extracted text missing article body:\n%s", article.Text)
	}
	if strings.Contains(article.Text, "trackPageView") {
		t.Error("extracted text contains script content")
	}
}

func TestFetchRejectsScheme(t *testing.T) {
	f := NewFetcher(log.NewNop())
	if _, err := f.Fetch(context.Background(), "ftp://example.com/file"); err == nil {
		t.Fatal("expected scheme rejection")
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(log.NewNop())
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestExtractFallback(t *testing.T) {
	// A page too bare for readability still yields its body text.
	page := `<html><head><title>Note</title><style>p{color:red}</style></head>` +
		`<body><p>just one line</p></body></html>`

	f := NewFetcher(log.NewNop())
	article, err := f.extractFallback([]byte(page))
	if err != nil {
		t.Fatalf("extractFallback: %v", err)
	}
	if article.Title != "Note" {
		t.Errorf("title = %q", article.Title)
	}
	if article.Text != "just one line" {
		t.Errorf("text = %q", article.Text)
	}
}

func TestArticleIngest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	store := &fakeCorpus{}
	ix := NewIndexer(store, nil, nil, log.NewNop())

	result, err := ix.Article(context.Background(), NewFetcher(log.NewNop()), srv.URL, "HealthArticles")
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if result.Collection != "HealthArticles" {
		t.Errorf("collection = %q", result.Collection)
	}
	if len(store.calls) != 1 {
		t.Fatalf("AddText called %d times", len(store.calls))
	}
	if store.calls[0].metadata["url"] != srv.URL {
		t.Errorf("metadata url = %q", store.calls[0].metadata["url"])
	}
}
