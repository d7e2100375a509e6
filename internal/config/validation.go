package config

import (
	"fmt"
	"os"
	"strings"
)

// Validation bounds.
const (
	minTemperature = 0.0
	maxTemperature = 2.0

	minMaxTokens = 1
	maxMaxTokens = 65536

	minChunkLength = 1
	maxChunkLength = 1 << 20

	minTopK = 1
	maxTopK = 100

	maxExcerptWindow = 100
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for correctness. It is called by Load
// after all sources are merged, so a *Config obtained from Load is always
// valid.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case ProviderGemini, ProviderGoogleAI:
	default:
		return fmt.Errorf("%w: %q (supported: gemini, googleai)", ErrInvalidProvider, c.Provider)
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}

	if c.Temperature < minTemperature || c.Temperature > maxTemperature {
		return fmt.Errorf("%w: %.2f (must be between %.1f and %.1f)",
			ErrInvalidTemperature, c.Temperature, minTemperature, maxTemperature)
	}

	if c.MaxTokens < minMaxTokens || c.MaxTokens > maxMaxTokens {
		return fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidMaxTokens, c.MaxTokens, minMaxTokens, maxMaxTokens)
	}

	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}

	if c.ChunkMinLength < minChunkLength || c.ChunkMinLength > maxChunkLength {
		return fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidChunkMinLength, c.ChunkMinLength, minChunkLength, maxChunkLength)
	}

	if c.RetrievalTopK < minTopK || c.RetrievalTopK > maxTopK {
		return fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidTopK, c.RetrievalTopK, minTopK, maxTopK)
	}

	if c.ExcerptWindow < 0 || c.ExcerptWindow > maxExcerptWindow {
		return fmt.Errorf("%w: %d (must be between 0 and %d)",
			ErrInvalidExcerptWindow, c.ExcerptWindow, maxExcerptWindow)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be between 1 and 65535)",
			ErrInvalidPostgresPort, c.PostgresPort)
	}

	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}

	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	if c.Textbelt.Enabled && strings.TrimSpace(c.Textbelt.Key) == "" {
		return fmt.Errorf("%w: textbelt.enabled requires TEXTBELT_KEY", ErrMissingTextbeltKey)
	}

	return nil
}

// ValidateAI additionally checks that the Gemini API key is present in the
// environment. Commands that reach the model call this; commands that only
// touch the database (contacts list, delete) do not.
func (c *Config) ValidateAI() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrMissingAPIKey)
	}
	return nil
}
