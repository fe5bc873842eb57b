package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Storage  StorageConfig  `yaml:"storage"`
	Model    ModelConfig    `yaml:"model"`
	Prompt   PromptConfig   `yaml:"prompt"`
	Lorebook LorebookConfig `yaml:"lorebook"`
}

type StorageConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
}

type ModelConfig struct {
	Default   string `yaml:"default"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxTokens int    `yaml:"max_tokens"`
}

type PromptConfig struct {
	// TemplatePath overrides the built-in mutation prompt template.
	TemplatePath string `yaml:"template_path"`
}

type LorebookConfig struct {
	Paths []string `yaml:"paths"`
}

func (m ModelConfig) APIKey() string {
	env := m.APIKeyEnv
	if env == "" {
		env = "LORELINK_API_KEY"
	}
	return os.Getenv(env)
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	switch cfg.Storage.Backend {
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("storage dsn is required")
		}
	case "":
		return fmt.Errorf("storage backend is required")
	default:
		return fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}

	if strings.TrimSpace(cfg.Model.Default) == "" {
		return fmt.Errorf("default model is required")
	}
	if cfg.Model.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}

	seen := make(map[string]struct{})
	for i, p := range cfg.Lorebook.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("lorebook path %d is empty", i)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("duplicate lorebook path: %s", p)
		}
		seen[p] = struct{}{}
	}

	return nil
}
