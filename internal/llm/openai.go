package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"

	"call-copilot/internal/config"
	"call-copilot/internal/models"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAI generates text against the OpenAI chat completions API or any
// compatible endpoint (OpenRouter uses the same client with its own
// base URL).
type OpenAI struct {
	llm *openai.LLM
}

// NewOpenAI verifies the credential and builds the client. A missing
// key is a configuration error, raised here rather than on first use.
func NewOpenAI(cfg *config.LLMConfig) (*OpenAI, error) {
	return newOpenAICompatible(cfg, cfg.BaseURL, "openai")
}

// NewOpenRouter is the OpenAI-compatible client pointed at OpenRouter.
func NewOpenRouter(cfg *config.LLMConfig) (*OpenAI, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	return newOpenAICompatible(cfg, baseURL, "openrouter")
}

func newOpenAICompatible(cfg *config.LLMConfig, baseURL, provider string) (*OpenAI, error) {
	key := cfg.Key()
	if key == "" {
		return nil, fmt.Errorf("%w: llm provider %q needs an api key", models.ErrConfiguration, provider)
	}
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(key, "Bearer ")),
		openai.WithModel(cfg.Model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init %s client: %w", provider, err)
	}
	return &OpenAI{llm: llm}, nil
}

func (g *OpenAI) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	return generateContent(ctx, g.llm, system, user, temperature)
}
