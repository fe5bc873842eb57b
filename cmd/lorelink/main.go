package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "lorelink",
		Short: "Lore activation and table-state engine for AI roleplay sessions",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(serveCmd())
	root.AddCommand(turnCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(lintCmd())
	root.AddCommand(sessionCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
