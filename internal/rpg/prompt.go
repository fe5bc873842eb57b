package rpg

import "strings"

// Placeholders of the mutation prompt template. Substitution is a single
// literal pass: macro-looking text inside table data is never re-expanded.
const (
	MacroSchema   = "{{rpg_schema}}"
	MacroData     = "{{rpg_data}}"
	MacroLorebook = "{{rpg_lorebook}}"
	MacroRules    = "{{global_rules}}"
	MacroHistory  = "{{chat_history}}"
)

// DefaultTemplate is the shipped mutation prompt. A per-database template
// (Settings.PromptTemplate) or a config-level override takes precedence.
const DefaultTemplate = `You maintain the structured game state for a roleplay session.

Table schema:
{{rpg_schema}}

Current table data:
{{rpg_data}}

Related lore:
{{rpg_lorebook}}

Rules:
{{global_rules}}

Recent events:
{{chat_history}}

Review the recent events and update the tables. Reply with a single
<tableEdit> block. Inside it, wrap each command in an HTML comment:
<!-- insertRow(tableIndex, {"columnIndex": value, ...}) -->
<!-- updateRow(tableIndex, rowIndex, {"columnIndex": value, ...}) -->
<!-- deleteRow(tableIndex, rowIndex) -->
Column keys are 0-based index strings. Close the block with </tableEdit>.`

// BuildMutationPrompt resolves the template macros against a (typically
// pre-filtered) database, assembled lore context, global rules and history.
func BuildMutationPrompt(template string, db *Database, lorebook, rules, history string) string {
	if template == "" {
		if db.Settings.PromptTemplate != "" {
			template = db.Settings.PromptTemplate
		} else {
			template = DefaultTemplate
		}
	}
	return strings.NewReplacer(
		MacroSchema, SchemaString(db),
		MacroData, DataString(db),
		MacroLorebook, lorebook,
		MacroRules, rules,
		MacroHistory, history,
	).Replace(template)
}
