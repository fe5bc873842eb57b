package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const exampleEntry = `---
title: Ruined Watchtower
keys:
  - watchtower
  - "old tower & ruin"
sticky: 2
order: 100
---
The watchtower on the northern ridge collapsed decades ago. Smugglers use
its cellar as a waypoint, and locals say lights still move behind the
broken arrow slits on moonless nights.
`

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new lorelink project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(projectName string) error {
	configPath := "lorelink.yaml"
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nstorage:\n  backend: sqlite\n  dsn: sqlite://lorelink.db\n\nmodel:\n  default: gpt-4o-mini\n  api_key_env: LORELINK_API_KEY\n  max_tokens: 4096\n\nlorebook:\n  paths:\n    - ./lore/\n", projectName)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	if err := os.MkdirAll("lore", 0o755); err != nil {
		return fmt.Errorf("creating lore directory: %w", err)
	}
	examplePath := filepath.Join("lore", "ruined-watchtower.md")
	if _, err := os.Stat(examplePath); os.IsNotExist(err) {
		if err := os.WriteFile(examplePath, []byte(exampleEntry), 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", examplePath, err)
		}
	}

	fmt.Fprintf(os.Stdout, "Initialised project %s.\n", projectName)
	return nil
}
