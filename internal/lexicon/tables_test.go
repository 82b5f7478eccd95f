package lexicon

import (
	"strings"
	"testing"
)

func TestEmbeddedTablesAreValid(t *testing.T) {
	if Version() <= 0 {
		t.Fatalf("version: want positive got %d", Version())
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadTablesRejectsOverlappingClasses(t *testing.T) {
	raw := []byte(`
version: 1
prepositions: [de, si]
determiners: [el, un]
definite_articles: [el]
indefinite_articles: [un]
conjunctions: [si]
`)
	_, err := LoadTables(raw)
	if err == nil {
		t.Fatalf("expected overlap error")
	}
	if !strings.Contains(err.Error(), "si") {
		t.Fatalf("error should name the word, got %v", err)
	}
}

func TestLoadTablesRejectsArticleOutsideDeterminers(t *testing.T) {
	raw := []byte(`
version: 1
prepositions: [de]
determiners: [este]
definite_articles: [el]
indefinite_articles: [un]
conjunctions: [y]
`)
	if _, err := LoadTables(raw); err == nil {
		t.Fatalf("expected error for article missing from determiners")
	}
}

func TestLoadTablesRejectsUpperCase(t *testing.T) {
	raw := []byte(`
version: 1
prepositions: [De]
determiners: [el, un]
definite_articles: [el]
indefinite_articles: [un]
conjunctions: [y]
`)
	if _, err := LoadTables(raw); err == nil {
		t.Fatalf("expected error for upper-case entry")
	}
}
