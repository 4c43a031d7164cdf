package llm

import (
	"errors"
	"testing"

	"call-copilot/internal/config"
	"call-copilot/internal/models"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(&config.LLMConfig{Provider: "claude-shannon"})
	if !errors.Is(err, models.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewOpenAIMissingKey(t *testing.T) {
	t.Setenv("COPILOT_TEST_EMPTY_KEY", "")
	for _, provider := range []string{"openai", "openrouter"} {
		t.Run(provider, func(t *testing.T) {
			_, err := New(&config.LLMConfig{
				Provider:  provider,
				Model:     "gpt-4o-mini",
				APIKeyEnv: "COPILOT_TEST_EMPTY_KEY",
			})
			if !errors.Is(err, models.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration for missing key, got %v", err)
			}
		})
	}
}

func TestNewOpenAIWithKey(t *testing.T) {
	gen, err := New(&config.LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*OpenAI); !ok {
		t.Fatalf("got %T, want *OpenAI", gen)
	}
}

func TestNewOllamaNeedsNoKey(t *testing.T) {
	gen, err := New(&config.LLMConfig{
		Provider: "ollama",
		BaseURL:  "http://localhost:11434",
		Model:    "llama3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*Ollama); !ok {
		t.Fatalf("got %T, want *Ollama", gen)
	}
}
