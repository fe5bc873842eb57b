package rpg

import (
	"errors"
	"strconv"
	"strings"
)

// The edit-block wire contract: the model's reply carries zero or more
// commands between these tags, each command shaped like
// insertRow(0, {"0": "...", "1": 5}), updateRow(0, 1, {...}) or
// deleteRow(0, 1). The prompt instructs the model to wrap commands in HTML
// comments, so comment markers are stripped while their payload is kept.
const (
	EditBlockStart = "<tableEdit>"
	EditBlockEnd   = "</tableEdit>"
)

var commandKeywords = []ActionKind{ActionInsert, ActionUpdate, ActionDelete}

// ParseEditBlock recovers the ordered command list from a raw model reply.
// Returns nil when no edit block is present. Malformed commands are skipped;
// the scan always resumes at the next keyword.
func ParseEditBlock(raw string) []Action {
	block, ok := extractBlock(raw)
	if !ok {
		return nil
	}
	block = stripMarkers(block)

	var actions []Action
	pos := 0
	for {
		kind, idx := nextKeyword(block, pos)
		if idx < 0 {
			break
		}
		after := idx + len(kind)
		action, next, ok := parseCommand(block, kind, after)
		if ok {
			actions = append(actions, action)
			pos = next
		} else {
			pos = after
		}
	}
	return actions
}

func extractBlock(raw string) (string, bool) {
	start := strings.Index(raw, EditBlockStart)
	if start < 0 {
		return "", false
	}
	body := raw[start+len(EditBlockStart):]
	if end := strings.Index(body, EditBlockEnd); end >= 0 {
		body = body[:end]
	}
	return body, true
}

// stripMarkers removes comment and code-fence markers but never the payload
// between them: a command wrapped in <!-- --> is still a live instruction.
func stripMarkers(s string) string {
	s = strings.ReplaceAll(s, "<!--", "")
	s = strings.ReplaceAll(s, "-->", "")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		if strings.HasPrefix(trimmed, "//") {
			line = strings.TrimPrefix(trimmed, "//")
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func nextKeyword(s string, from int) (ActionKind, int) {
	best := -1
	var kind ActionKind
	for _, kw := range commandKeywords {
		if idx := strings.Index(s[from:], string(kw)); idx >= 0 {
			if best < 0 || from+idx < best {
				best = from + idx
				kind = kw
			}
		}
	}
	return kind, best
}

func parseCommand(s string, kind ActionKind, pos int) (Action, int, bool) {
	pos = skipSpaces(s, pos)
	if pos >= len(s) || s[pos] != '(' {
		return Action{}, pos, false
	}
	pos++

	table, pos, ok := readIndex(s, pos)
	if !ok {
		return Action{}, pos, false
	}
	action := Action{Kind: kind, Table: table}

	switch kind {
	case ActionDelete:
		row, next, ok := readIndex(s, pos)
		if !ok {
			return Action{}, pos, false
		}
		action.Row = row
		return action, next, true

	case ActionUpdate:
		row, next, ok := readIndex(s, pos)
		if !ok {
			return Action{}, pos, false
		}
		action.Row = row
		pos = next
		fallthrough

	case ActionInsert:
		obj, next, ok := scanObject(s, pos)
		if !ok {
			return Action{}, pos, false
		}
		values, err := parseLooseObject(obj)
		if err != nil {
			return Action{}, next, false
		}
		action.Values = values
		return action, next, true
	}
	return Action{}, pos, false
}

// readIndex is a tolerant number-then-separator scan: anything up to the
// first digit run is ignored, so `( 0 ,`, `("1",` and `(index=2,` all read.
// A line break, brace or closing paren before any digit fails the command so
// a truncated call cannot swallow the one on the next line.
func readIndex(s string, pos int) (int, int, bool) {
	i := pos
	for i < len(s) && !isDigit(s[i]) {
		if s[i] == '{' || s[i] == ')' || s[i] == '\n' {
			return 0, pos, false
		}
		i++
	}
	if i >= len(s) {
		return 0, pos, false
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0, pos, false
	}
	return n, i, true
}

// scanObject locates the next JSON-ish object literal and returns the
// substring covering it. Braces inside quoted strings are ignored by
// tracking the active quote character and backslash escaping, so content
// containing literal "{" or "}" does not truncate the object.
func scanObject(s string, pos int) (string, int, bool) {
	start := strings.IndexByte(s[pos:], '{')
	if start < 0 {
		return "", pos, false
	}
	start += pos

	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				if quote == '\'' && !closesAt(s, i+1) {
					// Literal apostrophe inside an otherwise well-formed
					// single-quoted string.
					continue
				}
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}
	return "", pos, false
}

// closesAt reports whether a quote at position i-1 is plausibly a string
// terminator: the next non-space byte must be a structural delimiter.
func closesAt(s string, i int) bool {
	i = skipSpaces(s, i)
	if i >= len(s) {
		return true
	}
	switch s[i] {
	case ',', '}', ']', ':', ')':
		return true
	}
	return false
}

var errBadObject = errors.New("malformed object literal")

// parseLooseObject parses a JSON-like object with relaxed quoting: single
// quotes, bare keys, unquoted scalars and trailing commas are all accepted.
func parseLooseObject(src string) (map[string]any, error) {
	p := &looseParser{s: src}
	p.skip()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errBadObject
	}
	return obj, nil
}

type looseParser struct {
	s string
	i int
}

func (p *looseParser) skip() {
	p.i = skipSpaces(p.s, p.i)
}

func (p *looseParser) value() (any, error) {
	p.skip()
	if p.i >= len(p.s) {
		return nil, errBadObject
	}
	switch c := p.s[p.i]; c {
	case '{':
		return p.object()
	case '[':
		return p.array()
	case '"', '\'':
		return p.quoted(c)
	default:
		return p.bare()
	}
}

func (p *looseParser) object() (map[string]any, error) {
	obj := make(map[string]any)
	p.i++ // {
	for {
		p.skip()
		if p.i >= len(p.s) {
			return nil, errBadObject
		}
		if p.s[p.i] == '}' {
			p.i++
			return obj, nil
		}
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.skip()
		if p.i >= len(p.s) || p.s[p.i] != ':' {
			return nil, errBadObject
		}
		p.i++
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		obj[key] = val
		p.skip()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
		}
	}
}

func (p *looseParser) array() ([]any, error) {
	var arr []any
	p.i++ // [
	for {
		p.skip()
		if p.i >= len(p.s) {
			return nil, errBadObject
		}
		if p.s[p.i] == ']' {
			p.i++
			return arr, nil
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
		p.skip()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
		}
	}
}

func (p *looseParser) key() (string, error) {
	c := p.s[p.i]
	if c == '"' || c == '\'' {
		return p.quoted(c)
	}
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == ':' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		p.i++
	}
	key := strings.TrimSpace(p.s[start:p.i])
	if key == "" {
		return "", errBadObject
	}
	return key, nil
}

func (p *looseParser) quoted(quote byte) (string, error) {
	var b strings.Builder
	p.i++ // opening quote
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch {
		case c == '\\' && p.i+1 < len(p.s):
			next := p.s[p.i+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(next)
			}
			p.i += 2
		case c == quote:
			if quote == '\'' && !closesAt(p.s, p.i+1) {
				b.WriteByte(c)
				p.i++
				continue
			}
			p.i++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.i++
		}
	}
	return "", errBadObject
}

func (p *looseParser) bare() (any, error) {
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == ',' || c == '}' || c == ']' {
			break
		}
		p.i++
	}
	token := strings.TrimSpace(p.s[start:p.i])
	if token == "" {
		return nil, errBadObject
	}
	switch token {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	if n, err := strconv.ParseFloat(token, 64); err == nil {
		return n, nil
	}
	return token, nil
}

func skipSpaces(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
