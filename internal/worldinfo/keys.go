package worldinfo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Key syntax: "/pattern/" (optional trailing "i") is a regex literal.
// Otherwise "&" separates terms that must all be present and a "!" prefix
// negates a term. Plain terms match case-insensitively.

type keyMatcher struct {
	regex   *regexp.Regexp
	require []string
	exclude []string
}

func compileKey(key string) (*keyMatcher, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("empty key")
	}

	if pattern, ok := regexLiteral(key); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling key %q: %w", key, err)
		}
		return &keyMatcher{regex: re}, nil
	}

	m := &keyMatcher{}
	for _, term := range strings.Split(key, "&") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.HasPrefix(term, "!") {
			if neg := strings.TrimSpace(term[1:]); neg != "" {
				m.exclude = append(m.exclude, strings.ToLower(neg))
			}
			continue
		}
		m.require = append(m.require, strings.ToLower(term))
	}
	if len(m.require) == 0 && len(m.exclude) == 0 {
		return nil, fmt.Errorf("key %q has no terms", key)
	}
	return m, nil
}

func regexLiteral(key string) (string, bool) {
	if len(key) < 3 || !strings.HasPrefix(key, "/") {
		return "", false
	}
	end := strings.LastIndex(key, "/")
	if end == 0 {
		return "", false
	}
	pattern := key[1:end]
	flags := key[end+1:]
	if flags != "" && flags != "i" {
		return "", false
	}
	if flags == "i" {
		pattern = "(?i)" + pattern
	}
	return pattern, true
}

func (m *keyMatcher) matches(text, lowered string) bool {
	if m.regex != nil {
		return m.regex.MatchString(text)
	}
	for _, term := range m.require {
		if !containsTerm(lowered, term) {
			return false
		}
	}
	for _, term := range m.exclude {
		if containsTerm(lowered, term) {
			return false
		}
	}
	return true
}

// containsTerm matches on word-ish boundaries so "cat" does not hit
// "catastrophe", while still matching inside CJK or punctuated text where
// word boundaries do not exist.
func containsTerm(lowered, term string) bool {
	start := 0
	for {
		idx := strings.Index(lowered[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		if boundaryAt(lowered, idx) && boundaryAt(lowered, idx+len(term)) {
			return true
		}
		start = idx + 1
		if start >= len(lowered) {
			return false
		}
	}
}

func boundaryAt(s string, idx int) bool {
	if idx <= 0 || idx >= len(s) {
		return true
	}
	prev := rune(s[idx-1])
	cur := rune(s[idx])
	if prev >= 0x80 || cur >= 0x80 {
		return true
	}
	return !isWordRune(prev) || !isWordRune(cur)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// CheckKey reports whether a key expression is well formed without
// evaluating it.
func CheckKey(key string) error {
	_, err := compileKey(key)
	return err
}

// matchAnyKey reports whether any of the key expressions matches the text.
// Invalid keys are reported through warn and treated as never matching.
func matchAnyKey(keys []string, text, lowered string, warn func(string)) bool {
	for _, key := range keys {
		m, err := compileKey(key)
		if err != nil {
			if warn != nil {
				warn(err.Error())
			}
			continue
		}
		if m.matches(text, lowered) {
			return true
		}
	}
	return false
}
