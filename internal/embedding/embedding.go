package embedding

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"call-copilot/internal/config"
	"call-copilot/internal/models"
)

// New constructs the embedder named by cfg.Provider. Unknown providers
// and missing credentials fail here, before the first request.
func New(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch cfg.Provider {
	case "ollama":
		return newOllamaEmbedder(cfg)
	case "openai", "openrouter":
		return newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, cfg.Provider)
	}
}

func newOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama embedder: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

func newOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	key := cfg.Key()
	if key == "" {
		return nil, fmt.Errorf("%w: embedding provider %q needs an api key", models.ErrConfiguration, cfg.Provider)
	}
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai embedder: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}
