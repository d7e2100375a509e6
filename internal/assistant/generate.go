package assistant

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Generator produces a completion for a system and user prompt pair.
// Satisfied by ModelGenerator in production and testutil.MockLLM in tests.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ModelGenerator adapts a Genkit model to the Generator interface.
type ModelGenerator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float32
	maxTokens   int
}

// NewModelGenerator creates a ModelGenerator for the provider-qualified
// model name (e.g. "googleai/gemini-2.5-flash").
func NewModelGenerator(g *genkit.Genkit, modelName string, temperature float32, maxTokens int) *ModelGenerator {
	return &ModelGenerator{
		g:           g,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate implements Generator.
func (m *ModelGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.modelName),
		ai.WithSystem(system),
		ai.WithPrompt(user),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     float64(m.temperature),
			MaxOutputTokens: m.maxTokens,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", m.modelName, err)
	}
	return resp.Text(), nil
}
