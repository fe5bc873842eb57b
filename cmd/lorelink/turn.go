package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lorelink/internal/config"
	"lorelink/internal/llm"
	"lorelink/internal/lorebook"
	"lorelink/internal/rpg"
	"lorelink/internal/turn"
	"lorelink/internal/worldinfo"
)

func turnCmd() *cobra.Command {
	var sessionID string
	var debug bool
	cmd := &cobra.Command{
		Use:   "turn <text>",
		Short: "Run one table-mutation turn for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			return runTurn(sessionID, args[0], debug)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id")
	cmd.Flags().BoolVar(&debug, "debug", false, "Print the prompt and raw reply on failure")
	return cmd
}

func runTurn(sessionID, text string, debug bool) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("lorelink.yaml")
	if err != nil {
		return err
	}

	entries, errs := lorebook.Load(cfg.Lorebook.Paths)
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "lorebook: %v\n", e)
	}

	svc, err := llm.New(cfg.Model)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	state, err := db.LoadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	pool := append(append([]worldinfo.Entry(nil), entries...), rpg.Project(state.Database)...)
	state.Turn++
	scanned := worldinfo.Scan(worldinfo.ScanInput{
		Entries: pool,
		Stats:   state.Stats,
		Pinned:  pinnedSet(state.Database),
		Turn:    state.Turn,
		Text:    text,
	})
	for _, w := range scanned.Warnings {
		fmt.Fprintf(os.Stderr, "scan: %s\n", w)
	}

	result := turn.ProcessTurn(ctx, svc, turn.Request{
		History:   append(state.History, text),
		Database:  state.Database,
		Active:    scanned.Active,
		All:       pool,
		ModelID:   cfg.Model.Default,
		MaxTokens: cfg.Model.MaxTokens,
		Template:  loadTemplate(cfg),
	})
	if !result.Success {
		if debug {
			fmt.Fprintf(os.Stderr, "--- prompt ---\n%s\n", result.Failure.Prompt)
			fmt.Fprintf(os.Stderr, "--- reply ---\n%s\n", result.Failure.Response)
		}
		return result.Failure
	}

	state.Database = result.Database
	state.Stats = scanned.Stats
	state.History = append(state.History, text)
	if err := db.SaveSession(ctx, state); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	for _, n := range result.Notifications {
		fmt.Fprintln(os.Stdout, n)
	}
	if debug {
		for _, l := range result.Logs {
			fmt.Fprintf(os.Stderr, "log: %s\n", l)
		}
	}
	return nil
}

func pinnedSet(db *rpg.Database) map[string]struct{} {
	if len(db.Settings.Pinned) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(db.Settings.Pinned))
	for _, id := range db.Settings.Pinned {
		out[id] = struct{}{}
	}
	return out
}

func loadTemplate(cfg *config.ProjectConfig) string {
	if cfg.Prompt.TemplatePath == "" {
		return ""
	}
	data, err := os.ReadFile(cfg.Prompt.TemplatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prompt template: %v\n", err)
		return ""
	}
	return string(data)
}
