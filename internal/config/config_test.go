package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"call-copilot/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Backend != "chromem" {
		t.Errorf("default backend = %q, want chromem", cfg.Store.Backend)
	}
	if cfg.Segmenter.ChunkSize != 400 || cfg.Segmenter.Overlap != 80 {
		t.Errorf("default segmenter = %+v", cfg.Segmenter)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: openrouter\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKeyEnv != "OPENROUTER_API_KEY" {
		t.Errorf("APIKeyEnv = %q, want OPENROUTER_API_KEY", cfg.LLM.APIKeyEnv)
	}
	if cfg.Store.Chromem.Collection != "call_transcripts" {
		t.Errorf("collection = %q", cfg.Store.Chromem.Collection)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: pinecone\n")
	_, err := Load(path)
	if !errors.Is(err, models.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: postgres\n")
	_, err := Load(path)
	if !errors.Is(err, models.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadRejectsBadOverlap(t *testing.T) {
	path := writeConfig(t, "segmenter:\n  chunk_size: 100\n  overlap: 100\n")
	_, err := Load(path)
	if !errors.Is(err, models.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestKeyPrefersInlineValue(t *testing.T) {
	t.Setenv("TEST_COPILOT_KEY", "from-env")
	c := LLMConfig{APIKey: "inline", APIKeyEnv: "TEST_COPILOT_KEY"}
	if got := c.Key(); got != "inline" {
		t.Errorf("Key() = %q, want inline", got)
	}
	c.APIKey = ""
	if got := c.Key(); got != "from-env" {
		t.Errorf("Key() = %q, want from-env", got)
	}
}
