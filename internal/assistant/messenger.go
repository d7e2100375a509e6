package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Messenger delivers exactly one text message per call.
type Messenger interface {
	Send(ctx context.Context, phone, message string) error
}

// TextbeltClient sends SMS through a Textbelt-compatible HTTP API: one
// form-encoded POST carrying phone, message, and key.
//
// When disabled (the default), Send logs the message and returns nil
// without any network traffic, so the administrative flow stays testable
// without an API key.
type TextbeltClient struct {
	url     string
	key     string
	enabled bool
	client  *http.Client
	logger  *slog.Logger
}

// NewTextbeltClient creates a client for the given endpoint. A nil logger
// falls back to slog.Default().
func NewTextbeltClient(apiURL, key string, enabled bool, logger *slog.Logger) *TextbeltClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextbeltClient{
		url:     apiURL,
		key:     key,
		enabled: enabled,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Send implements Messenger.
func (t *TextbeltClient) Send(ctx context.Context, phone, message string) error {
	if !t.enabled {
		t.logger.Info("SMS sending disabled, dry run", "phone", phone, "length", len(message))
		return nil
	}

	form := url.Values{}
	form.Set("phone", phone)
	form.Set("message", message)
	form.Set("key", t.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending SMS: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS endpoint returned status %d", resp.StatusCode)
	}

	var parsed textbeltResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&parsed); err != nil {
		return fmt.Errorf("parsing SMS response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("SMS endpoint rejected message: %s", parsed.Error)
	}

	t.logger.Info("SMS sent", "phone", phone)
	return nil
}
