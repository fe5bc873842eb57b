package llm

import (
	"testing"

	"lorelink/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		t.Setenv("LLM_TEST_KEY", "")
		_, err := New(config.ModelConfig{Default: "gpt-4o-mini", APIKeyEnv: "LLM_TEST_KEY"})
		if err == nil {
			t.Fatalf("expected error without an API key")
		}
	})

	t.Run("claude routes to anthropic", func(t *testing.T) {
		t.Setenv("LLM_TEST_KEY", "k")
		svc, err := New(config.ModelConfig{Default: "claude-sonnet-4-5", APIKeyEnv: "LLM_TEST_KEY"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := svc.(*anthropicClient); !ok {
			t.Fatalf("expected anthropic backend, got %T", svc)
		}
	})

	t.Run("default routes to openai", func(t *testing.T) {
		t.Setenv("LLM_TEST_KEY", "k")
		svc, err := New(config.ModelConfig{Default: "gpt-4o-mini", APIKeyEnv: "LLM_TEST_KEY"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := svc.(*openAIClient); !ok {
			t.Fatalf("expected openai backend, got %T", svc)
		}
	})
}
