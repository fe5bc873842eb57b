package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"lorelink/internal/rpg"
	"lorelink/internal/store"
	"lorelink/internal/turn"
	"lorelink/internal/worldinfo"
)

type ScanLoreInput struct {
	Session string `json:"session" jsonschema:"session id"`
	Text    string `json:"text" jsonschema:"text to scan for trigger keys"`
}

type ScanLoreOutput struct {
	Active   []ActiveEntryOutput `json:"active"`
	Warnings []string            `json:"warnings,omitempty"`
}

type ActiveEntryOutput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type ListTablesInput struct {
	Session string `json:"session" jsonschema:"session id"`
}

type ListTablesOutput struct {
	Schema string `json:"schema"`
	Data   string `json:"data"`
}

type ApplyEditsInput struct {
	Session string `json:"session" jsonschema:"session id"`
	Text    string `json:"text" jsonschema:"raw reply text containing a tableEdit block"`
}

type ApplyEditsOutput struct {
	Applied       int      `json:"applied"`
	Notifications []string `json:"notifications,omitempty"`
	Logs          []string `json:"logs,omitempty"`
}

type ProcessTurnInput struct {
	Session string `json:"session" jsonschema:"session id"`
	Text    string `json:"text" jsonschema:"latest user text for this turn"`
}

type ProcessTurnOutput struct {
	Success       bool     `json:"success"`
	Notifications []string `json:"notifications,omitempty"`
	Logs          []string `json:"logs,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type GetPromptInput struct {
	Session string `json:"session" jsonschema:"session id"`
	Text    string `json:"text,omitempty" jsonschema:"user text used for lore activation"`
}

type GetPromptOutput struct {
	Prompt string `json:"prompt"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "scan_lore",
		Description: "Preview which lore entries activate for a piece of text (does not advance lifecycle state)",
	}, s.handleScanLore)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_tables",
		Description: "Return the session's table schema and current data as the model sees them",
	}, s.handleListTables)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "apply_edits",
		Description: "Parse a tableEdit block from raw text and apply it to the session database",
	}, s.handleApplyEdits)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "process_turn",
		Description: "Run one full table-mutation turn against the configured model",
	}, s.handleProcessTurn)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_prompt",
		Description: "Return the assembled mutation prompt without calling the model",
	}, s.handleGetPrompt)
}

func (s *Server) session(ctx context.Context, id string) (*store.SessionState, error) {
	if id == "" {
		return nil, fmt.Errorf("session is required")
	}
	state, err := s.db.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return state, nil
}

// pool combines authored lorebook entries with the Live-Link projection of
// the session's database.
func (s *Server) pool(state *store.SessionState) []worldinfo.Entry {
	return append(append([]worldinfo.Entry(nil), s.lorebook...), rpg.Project(state.Database)...)
}

func (s *Server) scan(state *store.SessionState, text string) worldinfo.ScanResult {
	return worldinfo.Scan(worldinfo.ScanInput{
		Entries:  s.pool(state),
		Stats:    state.Stats,
		Pinned:   pinnedSet(state.Database),
		Turn:     state.Turn,
		Text:     text,
	})
}

// template returns the configured prompt template override, or "" to use
// the session's own template or the built-in default.
func (s *Server) template() string {
	if s.cfg.Prompt.TemplatePath == "" {
		return ""
	}
	data, err := os.ReadFile(s.cfg.Prompt.TemplatePath)
	if err != nil {
		return ""
	}
	return string(data)
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

func (s *Server) handleScanLore(ctx context.Context, req *sdk.CallToolRequest, input ScanLoreInput) (*sdk.CallToolResult, ScanLoreOutput, error) {
	state, err := s.session(ctx, input.Session)
	if err != nil {
		return nil, ScanLoreOutput{}, err
	}

	res := s.scan(state, input.Text)
	out := ScanLoreOutput{Warnings: res.Warnings}
	for _, e := range res.Active {
		out.Active = append(out.Active, ActiveEntryOutput{ID: e.ID, Content: e.Content})
	}
	return nil, out, nil
}

func (s *Server) handleListTables(ctx context.Context, req *sdk.CallToolRequest, input ListTablesInput) (*sdk.CallToolResult, ListTablesOutput, error) {
	state, err := s.session(ctx, input.Session)
	if err != nil {
		return nil, ListTablesOutput{}, err
	}
	return nil, ListTablesOutput{
		Schema: rpg.SchemaString(state.Database),
		Data:   rpg.DataString(state.Database),
	}, nil
}

func (s *Server) handleApplyEdits(ctx context.Context, req *sdk.CallToolRequest, input ApplyEditsInput) (*sdk.CallToolResult, ApplyEditsOutput, error) {
	state, err := s.session(ctx, input.Session)
	if err != nil {
		return nil, ApplyEditsOutput{}, err
	}

	actions := rpg.ParseEditBlock(input.Text)
	if len(actions) == 0 {
		return nil, ApplyEditsOutput{}, fmt.Errorf("no parsable actions in text")
	}

	applied := rpg.Apply(state.Database, actions)
	state.Database = applied.DB
	if err := s.db.SaveSession(ctx, state); err != nil {
		return nil, ApplyEditsOutput{}, fmt.Errorf("saving session: %w", err)
	}

	return nil, ApplyEditsOutput{
		Applied:       len(actions),
		Notifications: applied.Notifications,
		Logs:          applied.Logs,
	}, nil
}

func (s *Server) handleProcessTurn(ctx context.Context, req *sdk.CallToolRequest, input ProcessTurnInput) (*sdk.CallToolResult, ProcessTurnOutput, error) {
	if s.svc == nil {
		return nil, ProcessTurnOutput{}, fmt.Errorf("no completion service configured")
	}
	state, err := s.session(ctx, input.Session)
	if err != nil {
		return nil, ProcessTurnOutput{}, err
	}

	state.Turn++
	scanned := s.scan(state, input.Text)

	result := turn.ProcessTurn(ctx, s.svc, turn.Request{
		History:   append(state.History, input.Text),
		Database:  state.Database,
		Active:    scanned.Active,
		All:       s.pool(state),
		ModelID:   s.cfg.Model.Default,
		MaxTokens: s.cfg.Model.MaxTokens,
		Template:  s.template(),
	})
	if !result.Success {
		// The prior database stays untouched; the caller may simply retry.
		return nil, ProcessTurnOutput{Error: result.Failure.Error()}, nil
	}

	state.Database = result.Database
	state.Stats = scanned.Stats
	state.History = append(state.History, input.Text)
	if err := s.db.SaveSession(ctx, state); err != nil {
		return nil, ProcessTurnOutput{}, fmt.Errorf("saving session: %w", err)
	}

	return nil, ProcessTurnOutput{
		Success:       true,
		Notifications: result.Notifications,
		Logs:          result.Logs,
	}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, req *sdk.CallToolRequest, input GetPromptInput) (*sdk.CallToolResult, GetPromptOutput, error) {
	state, err := s.session(ctx, input.Session)
	if err != nil {
		return nil, GetPromptOutput{}, err
	}

	scanned := s.scan(state, input.Text)
	activeIDs := make(map[string]struct{}, len(scanned.Active))
	for _, e := range scanned.Active {
		activeIDs[e.ID] = struct{}{}
	}

	filtered := rpg.FilterForPrompt(state.Database, activeIDs)
	lore := turn.LoreContext(scanned.Active, s.pool(state), state.Database.Settings.Pinned)
	prompt := rpg.BuildMutationPrompt(s.template(), filtered, lore, state.Database.GlobalRules, strings.Join(state.History, "\n"))
	return nil, GetPromptOutput{Prompt: prompt}, nil
}
