package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lorelink/internal/config"
	"lorelink/internal/lint"
	"lorelink/internal/lorebook"
	"lorelink/internal/rpg"
	"lorelink/internal/worldinfo"
)

func lintCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the lorebook, and optionally a session's tables, for problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Also lint this session's table database")
	return cmd
}

func runLint(sessionID string) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("lorelink.yaml")
	if err != nil {
		return err
	}

	entries, errs := lorebook.Load(cfg.Lorebook.Paths)
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "lorebook: %v\n", e)
	}

	var tables *rpg.Database
	if sessionID != "" {
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
		tables = state.Database
		entries = append(append([]worldinfo.Entry(nil), entries...), rpg.Project(tables)...)
	}

	report := lint.Run(entries, tables)

	var errorIssues []lint.Issue
	var warnIssues []lint.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case lint.SeverityError:
			errorIssues = append(errorIssues, issue)
		case lint.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("lint found errors")
	}
	return nil
}

func printIssues(w io.Writer, issues []lint.Issue) {
	for _, issue := range issues {
		where := issue.Entry
		if where == "" {
			where = issue.Table
		}
		if where != "" {
			fmt.Fprintf(w, "  [%s] %s: %s\n", issue.Code, where, issue.Message)
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", issue.Code, issue.Message)
	}
}
