// Package llm provides the text-generation capability behind the
// copilot. Every provider satisfies the same Generator contract; no
// provider-specific behavior or error shape leaks to callers.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Generator is the single capability the orchestrator needs from a
// language model backend.
type Generator interface {
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// generateContent runs one system+user completion against a
// langchaingo model and returns the first choice's text.
func generateContent(ctx context.Context, model llms.Model, system, user string, temperature float64) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}
	resp, err := model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return resp.Choices[0].Content, nil
}
