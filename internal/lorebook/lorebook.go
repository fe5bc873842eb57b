// Package lorebook loads hand-authored lore entries from markdown files with
// YAML frontmatter. The body is the entry content; the frontmatter carries
// trigger keys and lifecycle hints.
package lorebook

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"lorelink/internal/worldinfo"
)

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingKeys   = errors.New("frontmatter needs 'keys' unless 'constant' is set")
)

type frontmatter struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Keys          any    `yaml:"keys"`
	SecondaryKeys any    `yaml:"secondary_keys"`
	Constant      bool   `yaml:"constant"`
	Enabled       *bool  `yaml:"enabled"`
	Sticky        int    `yaml:"sticky"`
	Cooldown      int    `yaml:"cooldown"`
	Order         int    `yaml:"order"`
	Position      string `yaml:"position"`
}

// Parse extracts one lore entry from a markdown document.
func Parse(content []byte) (worldinfo.Entry, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return worldinfo.Entry{}, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return worldinfo.Entry{}, ErrNoFrontmatter
	}

	var fm frontmatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return worldinfo.Entry{}, ErrInvalidYAML
	}

	if strings.TrimSpace(fm.Title) == "" {
		return worldinfo.Entry{}, ErrMissingTitle
	}

	keys, err := stringList(fm.Keys)
	if err != nil {
		return worldinfo.Entry{}, fmt.Errorf("keys: %w", err)
	}
	secondary, err := stringList(fm.SecondaryKeys)
	if err != nil {
		return worldinfo.Entry{}, fmt.Errorf("secondary_keys: %w", err)
	}
	if len(keys) == 0 && !fm.Constant {
		return worldinfo.Entry{}, ErrMissingKeys
	}

	id := fm.ID
	if id == "" {
		id = slug(fm.Title)
	}

	enabled := true
	if fm.Enabled != nil {
		enabled = *fm.Enabled
	}

	position := worldinfo.Position(fm.Position)
	if position == "" {
		position = worldinfo.PositionBeforeChar
	}

	return worldinfo.Entry{
		ID:            id,
		Keys:          keys,
		SecondaryKeys: secondary,
		Content:       strings.TrimSpace(string(rest[end+len("---\n"):])),
		Constant:      fm.Constant,
		Enabled:       enabled,
		Sticky:        fm.Sticky,
		Cooldown:      fm.Cooldown,
		Order:         fm.Order,
		Position:      position,
	}, nil
}

func ParseFile(path string) (worldinfo.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return worldinfo.Entry{}, err
	}
	return Parse(data)
}

// Load walks the configured roots for markdown files and returns the parsed
// entries sorted by order. Files without frontmatter are skipped; other parse
// failures are collected and returned alongside the good entries.
func Load(roots []string) ([]worldinfo.Entry, []error) {
	var entries []worldinfo.Entry
	var errs []error
	seen := make(map[string]string)

	files, err := walkMarkdownFiles(roots)
	if err != nil {
		return nil, []error{err}
	}

	for _, path := range files {
		entry, err := ParseFile(path)
		if err != nil {
			if errors.Is(err, ErrNoFrontmatter) {
				continue
			}
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		if prev, dup := seen[entry.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate entry id %q in %s (first seen in %s)", entry.ID, path, prev))
			continue
		}
		seen[entry.ID] = path
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
	return entries, errs
}

func walkMarkdownFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".md") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func stringList(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("values must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be string or list of strings")
	}
}

func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
