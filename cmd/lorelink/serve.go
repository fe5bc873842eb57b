package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lorelink/internal/config"
	"lorelink/internal/llm"
	"lorelink/internal/lorebook"
	"lorelink/internal/mcp"
	"lorelink/internal/turn"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("lorelink.yaml")
	if err != nil {
		return err
	}

	entries, errs := lorebook.Load(cfg.Lorebook.Paths)
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "lorebook: %v\n", e)
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	// The completion backend is optional for serving: tools that do not
	// call the model still work without an API key.
	var svc turn.CompletionService
	if client, err := llm.New(cfg.Model); err == nil {
		svc = client
	} else {
		fmt.Fprintf(os.Stderr, "completion service unavailable: %v\n", err)
	}

	server := mcp.NewServer(cfg, db, entries, svc, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
