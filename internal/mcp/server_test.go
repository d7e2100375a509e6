package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/supervisionhq/jarvis/internal/assistant"
	"github.com/supervisionhq/jarvis/internal/contacts"
	"github.com/supervisionhq/jarvis/internal/corpus"
	"github.com/supervisionhq/jarvis/internal/log"
)

type fakeRouter struct {
	reply assistant.Reply
	err   error
}

func (f *fakeRouter) Handle(context.Context, string, string) (assistant.Reply, error) {
	if f.err != nil {
		return assistant.Reply{}, f.err
	}
	return f.reply, nil
}

type fakeStore struct {
	hits []corpus.Hit
	err  error
}

func (f *fakeStore) Search(context.Context, string, string, ...corpus.SearchOption) ([]corpus.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func newTestServer(t *testing.T, router Assistant, store Searcher) *Server {
	t.Helper()
	s, err := NewServer(Config{
		Name:    "jarvis",
		Version: "test",
		Router:  router,
		Store:   store,
		Logger:  log.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestNewServerValidation(t *testing.T) {
	router := &fakeRouter{}
	store := &fakeStore{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing name", Config{Version: "1", Router: router, Store: store}},
		{"missing version", Config{Name: "jarvis", Router: router, Store: store}},
		{"missing router", Config{Name: "jarvis", Version: "1", Store: store}},
		{"missing store", Config{Name: "jarvis", Version: "1", Router: router}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServer(tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func resultText(t *testing.T, content []mcp.Content) string {
	t.Helper()
	var b strings.Builder
	for _, c := range content {
		tc, ok := c.(*mcp.TextContent)
		if !ok {
			t.Fatalf("unexpected content type %T", c)
		}
		b.WriteString(tc.Text)
	}
	return b.String()
}

func TestAssistTool(t *testing.T) {
	router := &fakeRouter{reply: assistant.Reply{Answer: "Tuesday.", Category: "Normal"}}
	s := newTestServer(t, router, &fakeStore{})

	result, _, err := s.handleAssist(context.Background(), nil, AssistInput{Request: "When is the meeting?"})
	if err != nil {
		t.Fatalf("handleAssist: %v", err)
	}
	if result.IsError {
		t.Fatal("unexpected error result")
	}
	text := resultText(t, result.Content)
	if !strings.Contains(text, "Tuesday.") || !strings.Contains(text, "[Normal]") {
		t.Errorf("unexpected result text %q", text)
	}
}

func TestAssistToolEmptyRequest(t *testing.T) {
	s := newTestServer(t, &fakeRouter{}, &fakeStore{})

	result, _, err := s.handleAssist(context.Background(), nil, AssistInput{Request: "  "})
	if err != nil {
		t.Fatalf("handleAssist: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for empty request")
	}
}

func TestAssistToolUnknownContact(t *testing.T) {
	router := &fakeRouter{err: contacts.ErrContactNotFound}
	s := newTestServer(t, router, &fakeStore{})

	result, _, err := s.handleAssist(context.Background(), nil, AssistInput{Request: "Text Zork"})
	if err != nil {
		t.Fatalf("unresolved contact should be a tool-level error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result")
	}
}

func TestAssistToolFailure(t *testing.T) {
	router := &fakeRouter{err: errors.New("model down")}
	s := newTestServer(t, router, &fakeStore{})

	if _, _, err := s.handleAssist(context.Background(), nil, AssistInput{Request: "hi"}); err == nil {
		t.Error("expected protocol-level error")
	}
}

func TestSearchTool(t *testing.T) {
	store := &fakeStore{hits: []corpus.Hit{
		{Chunk: corpus.Chunk{
			Collection: "ResearchPapers",
			DocumentID: 2,
			Seq:        5,
			Content:    "Attention weighs tokens.",
			Metadata:   map[string]string{"title": "Attention Is All You Need"},
		}, Score: 0.91},
	}}
	s := newTestServer(t, &fakeRouter{}, store)

	result, _, err := s.handleSearch(context.Background(), nil, SearchInput{
		Collection: "ResearchPapers",
		Query:      "attention",
	})
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	text := resultText(t, result.Content)
	if !strings.Contains(text, "Attention Is All You Need") {
		t.Errorf("result missing title:\n%s", text)
	}
	if !strings.Contains(text, "Attention weighs tokens.") {
		t.Errorf("result missing chunk content:\n%s", text)
	}
}

func TestSearchToolEmptyResults(t *testing.T) {
	s := newTestServer(t, &fakeRouter{}, &fakeStore{})

	result, _, err := s.handleSearch(context.Background(), nil, SearchInput{
		Collection: "ResearchPapers",
		Query:      "nothing here",
	})
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	if result.IsError {
		t.Error("empty results are not an error")
	}
}

func TestSearchToolValidation(t *testing.T) {
	s := newTestServer(t, &fakeRouter{}, &fakeStore{})

	result, _, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "q"})
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing collection")
	}
}
