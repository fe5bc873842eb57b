// Package llm provides completion-service backends for the turn
// orchestrator. The engine itself never constructs network requests; these
// clients are the only place model HTTP traffic lives.
package llm

import (
	"fmt"
	"strings"

	"lorelink/internal/config"
	"lorelink/internal/turn"
)

// New picks a backend for the configured default model: Anthropic for
// claude-* ids, OpenAI-compatible for everything else.
func New(cfg config.ModelConfig) (turn.CompletionService, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("model API key is not set (env %s)", cfg.APIKeyEnv)
	}
	if strings.HasPrefix(cfg.Default, "claude") {
		return newAnthropic(key), nil
	}
	return newOpenAI(key, cfg.BaseURL), nil
}
