package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/closed_class.yaml
var closedClassYAML []byte

// Correction forces the English gloss of a surface form the upstream model is known to mistranslate.
// WhenPartOfSpeech, if set, limits the override to tokens carrying that tag.
type Correction struct {
	Form             string `yaml:"form" json:"form"`
	WhenPartOfSpeech string `yaml:"when_part_of_speech" json:"whenPartOfSpeech,omitempty"`
	Gloss            string `yaml:"gloss" json:"gloss"`
}

// Tables is the versioned closed-class data the classifier and normalizer are built from.
type Tables struct {
	Version            int          `yaml:"version" json:"version"`
	Prepositions       []string     `yaml:"prepositions" json:"prepositions"`
	Determiners        []string     `yaml:"determiners" json:"determiners"`
	DefiniteArticles   []string     `yaml:"definite_articles" json:"definiteArticles"`
	IndefiniteArticles []string     `yaml:"indefinite_articles" json:"indefiniteArticles"`
	Conjunctions       []string     `yaml:"conjunctions" json:"conjunctions"`
	Corrections        []Correction `yaml:"corrections" json:"corrections"`
}

var defaultTables = mustLoadTables(closedClassYAML)

// Default returns the embedded tables. Callers must not mutate the result.
func Default() *Tables {
	return defaultTables
}

// Version is the version of the embedded tables.
func Version() int {
	return defaultTables.Version
}

func mustLoadTables(raw []byte) *Tables {
	t, err := LoadTables(raw)
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded tables invalid: %v", err))
	}
	return t
}

// LoadTables parses and validates a YAML table document.
func LoadTables(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse lexicon tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that entries are lower-case, the three word classes are disjoint and
// every article is also listed as a determiner.
func (t *Tables) Validate() error {
	if t.Version <= 0 {
		return errors.New("lexicon tables: version must be positive")
	}
	lists := map[string][]string{
		"prepositions":        t.Prepositions,
		"determiners":         t.Determiners,
		"definite_articles":   t.DefiniteArticles,
		"indefinite_articles": t.IndefiniteArticles,
		"conjunctions":        t.Conjunctions,
	}
	for name, words := range lists {
		if len(words) == 0 {
			return fmt.Errorf("lexicon tables: %s is empty", name)
		}
		for _, w := range words {
			if w != strings.ToLower(strings.TrimSpace(w)) || w == "" {
				return fmt.Errorf("lexicon tables: %s entry %q must be lower-case and trimmed", name, w)
			}
		}
	}

	seen := make(map[string]string)
	for _, class := range []string{"prepositions", "determiners", "conjunctions"} {
		for _, w := range lists[class] {
			if prev, ok := seen[w]; ok {
				return fmt.Errorf("lexicon tables: %q listed in both %s and %s", w, prev, class)
			}
			seen[w] = class
		}
	}

	for _, w := range append(append([]string{}, t.DefiniteArticles...), t.IndefiniteArticles...) {
		if seen[w] != "determiners" {
			return fmt.Errorf("lexicon tables: article %q is not a determiner", w)
		}
	}
	definite := toSet(t.DefiniteArticles)
	for _, w := range t.IndefiniteArticles {
		if _, ok := definite[w]; ok {
			return fmt.Errorf("lexicon tables: %q is both definite and indefinite", w)
		}
	}

	for i, c := range t.Corrections {
		if c.Form == "" || c.Gloss == "" {
			return fmt.Errorf("lexicon tables: correction %d needs form and gloss", i)
		}
		if c.Form != strings.ToLower(c.Form) {
			return fmt.Errorf("lexicon tables: correction form %q must be lower-case", c.Form)
		}
	}
	return nil
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
