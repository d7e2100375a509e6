// Package mcp exposes the assistant over the Model Context Protocol, so
// MCP clients can route requests and search the corpus as tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/supervisionhq/jarvis/internal/assistant"
	"github.com/supervisionhq/jarvis/internal/contacts"
	"github.com/supervisionhq/jarvis/internal/corpus"
)

// Assistant routes one request. Satisfied by *assistant.Assistant.
type Assistant interface {
	Handle(ctx context.Context, request, convContext string) (assistant.Reply, error)
}

// Searcher queries a corpus collection. Satisfied by *corpus.Store.
type Searcher interface {
	Search(ctx context.Context, collection, query string, opts ...corpus.SearchOption) ([]corpus.Hit, error)
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Router  Assistant
	Store   Searcher
	Logger  *slog.Logger
}

// Server wraps the MCP SDK server around the assistant.
type Server struct {
	mcpServer *mcp.Server
	router    Assistant
	store     Searcher
	logger    *slog.Logger
}

// NewServer creates an MCP server with the assist and search_corpus tools
// registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Router == nil {
		return nil, fmt.Errorf("assistant is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("corpus store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		router: cfg.Router,
		store:  cfg.Store,
		logger: logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return s, nil
}

// Run starts the MCP server on the given transport and blocks until the
// context is cancelled or the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// AssistInput defines the input schema for the assist tool.
type AssistInput struct {
	Request string `json:"request" jsonschema:"The request to route through the assistant"`
	Context string `json:"context,omitempty" jsonschema:"Optional rolling conversation context from earlier turns"`
}

// SearchInput defines the input schema for the search_corpus tool.
type SearchInput struct {
	Collection string `json:"collection" jsonschema:"Corpus collection to search, e.g. ResearchPapers or HealthArticles"`
	Query      string `json:"query" jsonschema:"Text to search for by semantic similarity"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"Number of chunks to return (default 3)"`
}

func (s *Server) registerTools() error {
	assistSchema, err := jsonschema.For[AssistInput](nil)
	if err != nil {
		return fmt.Errorf("schema for assist tool: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "assist",
		Description: "Route a personal assistant request. The request is classified " +
			"(normal, administrative, technical, healthcare, conversational) and answered " +
			"with retrieved context where the category calls for it.",
		InputSchema: assistSchema,
	}, s.handleAssist)

	searchSchema, err := jsonschema.For[SearchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for search_corpus tool: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "search_corpus",
		Description: "Search a corpus collection by semantic similarity and return the " +
			"matching chunks with their scores.",
		InputSchema: searchSchema,
	}, s.handleSearch)

	return nil
}

func (s *Server) handleAssist(ctx context.Context, _ *mcp.CallToolRequest, input AssistInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Request) == "" {
		return errorResult("request must not be empty"), nil, nil
	}

	reply, err := s.router.Handle(ctx, input.Request, input.Context)
	if errors.Is(err, contacts.ErrContactNotFound) {
		return errorResult("couldn't identify who you mean"), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("assist failed: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("[%s] %s", reply.Category, reply.Answer),
		}},
	}, reply, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Collection) == "" {
		return errorResult("collection must not be empty"), nil, nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query must not be empty"), nil, nil
	}

	var opts []corpus.SearchOption
	if input.TopK > 0 {
		opts = append(opts, corpus.WithTopK(input.TopK))
	}

	hits, err := s.store.Search(ctx, input.Collection, input.Query, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("search failed: %w", err)
	}
	if len(hits) == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "no matching chunks"}},
		}, hits, nil
	}

	var b strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. [score %.3f, document %d, chunk %d]", i+1, hit.Score, hit.DocumentID, hit.Seq)
		if title := hit.Metadata["title"]; title != "" {
			fmt.Fprintf(&b, " %s", title)
		}
		b.WriteString("\n")
		b.WriteString(hit.Content)
		b.WriteString("\n\n")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: strings.TrimSpace(b.String())}},
	}, hits, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
