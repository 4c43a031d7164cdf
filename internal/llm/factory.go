package llm

import (
	"fmt"

	"call-copilot/internal/config"
	"call-copilot/internal/models"
)

// New maps the configured provider name to exactly one concrete
// backend. Unknown names fail; there is no silent default that could
// hide a credential misconfiguration.
func New(cfg *config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg)
	case "openrouter":
		return NewOpenRouter(cfg)
	case "ollama":
		return NewOllama(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", models.ErrConfiguration, cfg.Provider)
	}
}
