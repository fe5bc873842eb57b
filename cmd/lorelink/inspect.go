package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"lorelink/internal/config"
	"lorelink/internal/rpg"
)

func inspectCmd() *cobra.Command {
	var showData bool
	cmd := &cobra.Command{
		Use:   "inspect <session>",
		Short: "Show a session's tables and lore lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], showData)
		},
	}
	cmd.Flags().BoolVar(&showData, "data", false, "Include full row data")
	return cmd
}

func runInspect(sessionID string, showData bool) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("lorelink.yaml")
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

	fmt.Fprintf(os.Stdout, "%s (turn %d, updated %s)\n", state.Name, state.Turn, state.UpdatedAt.Format("2006-01-02 15:04:05"))
	for i, t := range state.Database.Tables {
		link := ""
		if t.LiveLink.Enabled {
			link = " [live-link]"
		}
		fmt.Fprintf(os.Stdout, "  table %d: %s (%d columns, %d rows)%s\n", i, t.Name, len(t.Columns), len(t.Rows), link)
	}

	if len(state.Stats) > 0 {
		fmt.Fprintln(os.Stdout, "lore state:")
		ids := make([]string, 0, len(state.Stats))
		for id := range state.Stats {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			st := state.Stats[id]
			fmt.Fprintf(os.Stdout, "  %s: sticky=%d cooldown=%d last_active=%d\n", id, st.Sticky, st.Cooldown, st.LastActiveTurn)
		}
	}

	if showData {
		fmt.Fprintln(os.Stdout, rpg.DataString(state.Database))
	}
	return nil
}
