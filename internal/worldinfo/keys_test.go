package worldinfo

import (
	"strings"
	"testing"
)

func TestCompileKey(t *testing.T) {
	t.Run("plain term", func(t *testing.T) {
		m, err := compileKey("dragon")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !m.matches("The Dragon sleeps", "the dragon sleeps") {
			t.Fatalf("expected match")
		}
	})

	t.Run("word boundary", func(t *testing.T) {
		m, err := compileKey("cat")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.matches("catastrophe", "catastrophe") {
			t.Fatalf("expected no match inside a longer word")
		}
		if !m.matches("a cat, sleeping", "a cat, sleeping") {
			t.Fatalf("expected match on punctuation boundary")
		}
	})

	t.Run("and terms", func(t *testing.T) {
		m, err := compileKey("sword & forge")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.matches("the sword gleams", "the sword gleams") {
			t.Fatalf("expected no match with one term missing")
		}
		if !m.matches("the sword left the forge", "the sword left the forge") {
			t.Fatalf("expected match with both terms")
		}
	})

	t.Run("negated term", func(t *testing.T) {
		m, err := compileKey("king & !dead")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.matches("the king is dead", "the king is dead") {
			t.Fatalf("expected negation to block")
		}
		if !m.matches("long live the king", "long live the king") {
			t.Fatalf("expected match without negated term")
		}
	})

	t.Run("regex literal", func(t *testing.T) {
		m, err := compileKey("/dragon(s)?/")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !m.matches("two dragons", "two dragons") {
			t.Fatalf("expected regex match")
		}
		if m.matches("two Dragons", "two dragons") {
			t.Fatalf("case-sensitive regex should not match capital")
		}
	})

	t.Run("regex with i flag", func(t *testing.T) {
		m, err := compileKey("/dragon/i")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !m.matches("the Dragon", "the dragon") {
			t.Fatalf("expected case-insensitive regex match")
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := compileKey("  "); err == nil {
			t.Fatalf("expected error for empty key")
		}
	})

	t.Run("invalid regex", func(t *testing.T) {
		if _, err := compileKey("/[unterminated/"); err == nil {
			t.Fatalf("expected error for invalid regex")
		}
	})
}

func TestMatchAnyKeyWarns(t *testing.T) {
	var warnings []string
	warn := func(msg string) { warnings = append(warnings, msg) }

	ok := matchAnyKey([]string{"/[bad/", "tavern"}, "at the tavern", "at the tavern", warn)
	if !ok {
		t.Fatalf("expected valid key to still match")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0], "[bad") {
		t.Fatalf("warning should mention the bad key: %q", warnings[0])
	}
}

func TestCheckKey(t *testing.T) {
	if err := CheckKey("dragon & !tame"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := CheckKey("/[/"); err == nil {
		t.Fatalf("expected error for invalid regex")
	}
}
