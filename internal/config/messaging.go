package config

import (
	"encoding/json"
	"fmt"
)

// TextbeltConfig configures the outgoing SMS endpoint used by the
// administrative flow. The API is Textbelt-compatible: a single form-encoded
// POST with phone, message, and key fields.
//
// Enabled defaults to false, in which case the messenger runs in dry-run
// mode and no request leaves the process.
type TextbeltConfig struct {
	URL     string `mapstructure:"url" json:"url"`
	Key     string `mapstructure:"key" json:"key"` // SENSITIVE: masked in MarshalJSON
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

// MarshalJSON masks the API key.
func (t TextbeltConfig) MarshalJSON() ([]byte, error) {
	type alias TextbeltConfig
	a := alias(t)
	a.Key = maskSecret(a.Key)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal textbelt config: %w", err)
	}
	return data, nil
}
