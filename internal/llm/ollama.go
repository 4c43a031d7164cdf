package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"call-copilot/internal/config"
)

// Ollama generates text against a locally hosted Ollama server.
// No credential is required.
type Ollama struct {
	llm *ollama.LLM
}

func NewOllama(cfg *config.LLMConfig) (*Ollama, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	return &Ollama{llm: llm}, nil
}

func (g *Ollama) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	return generateContent(ctx, g.llm, system, user, temperature)
}
