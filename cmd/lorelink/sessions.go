package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lorelink/internal/config"
	"lorelink/internal/rpg"
	"lorelink/internal/store"
	"lorelink/internal/worldinfo"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage roleplay sessions",
	}
	cmd.AddCommand(sessionListCmd())
	cmd.AddCommand(sessionCreateCmd())
	cmd.AddCommand(sessionDeleteCmd())
	return cmd
}

func sessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionList()
		},
	}
}

func runSessionList() error {
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

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stdout, "No sessions found.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(os.Stdout, "%s  %s (turn %d, updated %s)\n", s.ID, s.Name, s.Turn, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func sessionCreateCmd() *cobra.Command {
	var name string
	var dbPath string
	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionCreate(args[0], name, dbPath)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the id)")
	cmd.Flags().StringVar(&dbPath, "tables", "", "JSON file holding the initial table database")
	return cmd
}

func runSessionCreate(id, name, dbPath string) error {
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

	existing, err := db.LoadSession(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("session already exists: %s", id)
	}

	tables := &rpg.Database{UpdatedAt: time.Now().UTC()}
	if dbPath != "" {
		data, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("reading tables file: %w", err)
		}
		if err := json.Unmarshal(data, tables); err != nil {
			return fmt.Errorf("parsing tables file: %w", err)
		}
	}

	if name == "" {
		name = id
	}
	state := &store.SessionState{
		ID:       id,
		Name:     name,
		Database: tables,
		Stats:    make(map[string]worldinfo.Stats),
	}
	if err := db.SaveSession(ctx, state); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Created session %s.\n", id)
	return nil
}

func sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionDelete(args[0])
		},
	}
}

func runSessionDelete(id string) error {
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

	if err := db.DeleteSession(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Deleted session %s.\n", id)
	return nil
}
