package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"
)

const (
	fetchTimeout    = 30 * time.Second
	maxResponseSize = 10 << 20
	fetchUserAgent  = "jarvis-ingest/1.0"
)

// ErrNoContent indicates a fetched page yielded no readable text.
var ErrNoContent = errors.New("no readable content")

// Article is the readable portion of a fetched web page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads web pages and extracts their readable text. Extraction
// runs readability first and falls back to stripping the parsed HTML tree
// when readability finds nothing.
type Fetcher struct {
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A nil logger falls back to slog.Default().
func NewFetcher(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{logger: logger}
}

// Fetch downloads rawURL and returns its readable article text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return Article{}, fmt.Errorf("parsing URL: %w", err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return Article{}, fmt.Errorf("unsupported URL scheme %q", pageURL.Scheme)
	}

	body, err := f.download(ctx, rawURL)
	if err != nil {
		return Article{}, err
	}

	article, err := f.extract(body, pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("extracting %s: %w", rawURL, err)
	}
	article.URL = rawURL

	f.logger.Debug("article fetched", "url", rawURL, "title", article.Title, "bytes", len(article.Text))
	return article, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	c := colly.NewCollector(
		colly.UserAgent(fetchUserAgent),
		colly.MaxBodySize(maxResponseSize),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(fetchTimeout)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	c.Wait()

	if len(body) == 0 {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, ErrNoContent)
	}
	return body, nil
}

func (f *Fetcher) extract(body []byte, pageURL *url.URL) (Article, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return Article{
			Title: strings.TrimSpace(article.Title),
			Text:  strings.TrimSpace(article.TextContent),
		}, nil
	}
	if err != nil {
		f.logger.Debug("readability extraction failed, falling back", "error", err)
	}
	return f.extractFallback(body)
}

// extractFallback strips scripts and styles from the parsed tree and takes
// whatever body text remains. Crude, but better than dropping the page.
func (f *Fetcher) extractFallback(body []byte) (Article, error) {
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Article{}, fmt.Errorf("parsing HTML: %w", err)
	}

	doc := goquery.NewDocumentFromNode(node)
	doc.Find("script, style, nav, header, footer, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		return Article{}, ErrNoContent
	}
	return Article{Title: title, Text: text}, nil
}
