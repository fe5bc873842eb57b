// Package turn glues the activation tracker, context filter, prompt builder,
// parser and applier into the two-phase per-turn flow. It owns no state: the
// caller keeps the database and stats between calls and discards them on
// failure, so a failed turn has no observable side effect.
package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lorelink/internal/rpg"
	"lorelink/internal/worldinfo"
)

type GenParams struct {
	MaxTokens   int
	Temperature float64
}

// CompletionService is the model backend collaborator: prompt text in, raw
// reply text out. Implementations live in internal/llm.
type CompletionService interface {
	Complete(ctx context.Context, prompt, modelID string, params GenParams) (string, error)
}

type Request struct {
	History   []string
	Database  *rpg.Database
	Active    []worldinfo.Entry // this turn's active lore, from worldinfo.Scan
	All       []worldinfo.Entry // full pool, used to resolve pinned ids
	ModelID   string
	MaxTokens int
	Template  string
}

var ErrNoActions = errors.New("reply contained no parsable actions")

// Failure carries the raw prompt and response for diagnostics when a turn
// fails wholesale.
type Failure struct {
	Prompt   string
	Response string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("turn failed: %v", f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

type Result struct {
	Success       bool
	Database      *rpg.Database
	Notifications []string
	Logs          []string
	Failure       *Failure
}

// ProcessTurn drives one table-mutation turn: shrink the database to the
// active rows, build the mutation prompt, call the model, parse the edit
// block and apply it to a fresh copy of the full database.
func ProcessTurn(ctx context.Context, svc CompletionService, req Request) Result {
	activeIDs := make(map[string]struct{}, len(req.Active))
	for _, e := range req.Active {
		activeIDs[e.ID] = struct{}{}
	}

	filtered := rpg.FilterForPrompt(req.Database, activeIDs)
	lore := LoreContext(req.Active, req.All, req.Database.Settings.Pinned)
	history := strings.Join(req.History, "\n")
	prompt := rpg.BuildMutationPrompt(req.Template, filtered, lore, req.Database.GlobalRules, history)

	modelID := req.ModelID
	if modelID == "" {
		modelID = req.Database.Settings.Model
	}

	raw, err := svc.Complete(ctx, prompt, modelID, GenParams{MaxTokens: req.MaxTokens})
	if err != nil {
		return Result{Failure: &Failure{Prompt: prompt, Err: fmt.Errorf("completion: %w", err)}}
	}

	actions := rpg.ParseEditBlock(raw)
	if len(actions) == 0 {
		return Result{Failure: &Failure{Prompt: prompt, Response: raw, Err: ErrNoActions}}
	}

	applied := rpg.Apply(req.Database, actions)
	return Result{
		Success:       true,
		Database:      applied.DB,
		Notifications: applied.Notifications,
		Logs:          applied.Logs,
	}
}

// LoreContext assembles the lore string for the mutation prompt: active
// entries in activation order, plus pinned entries that were not already
// active.
func LoreContext(active, all []worldinfo.Entry, pinned []string) string {
	seen := make(map[string]struct{}, len(active))
	var b strings.Builder
	for _, e := range active {
		seen[e.ID] = struct{}{}
		writeEntry(&b, e)
	}
	if len(pinned) > 0 {
		want := make(map[string]struct{}, len(pinned))
		for _, id := range pinned {
			want[id] = struct{}{}
		}
		for _, e := range all {
			if _, ok := want[e.ID]; !ok {
				continue
			}
			if _, dup := seen[e.ID]; dup {
				continue
			}
			writeEntry(&b, e)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeEntry(b *strings.Builder, e worldinfo.Entry) {
	b.WriteString(strings.TrimSpace(e.Content))
	b.WriteString("\n\n")
}
