package lexicon

import (
	"strings"
	"unicode"

	"spanish_learning_backend/internal/model"
)

// Classifier forces part-of-speech tags for closed-class Spanish words.
type Classifier struct {
	prepositions map[string]struct{}
	determiners  map[string]struct{}
	definite     map[string]struct{}
	indefinite   map[string]struct{}
	conjunctions map[string]struct{}
}

func NewClassifier(t *Tables) *Classifier {
	return &Classifier{
		prepositions: toSet(t.Prepositions),
		determiners:  toSet(t.Determiners),
		definite:     toSet(t.DefiniteArticles),
		indefinite:   toSet(t.IndefiniteArticles),
		conjunctions: toSet(t.Conjunctions),
	}
}

var defaultClassifier = NewClassifier(defaultTables)

// DefaultClassifier is built from the embedded tables.
func DefaultClassifier() *Classifier {
	return defaultClassifier
}

// Classify returns a copy of w with its part of speech corrected when the surface form is a
// closed-class word. Lists are checked preposition, determiner, conjunction; first hit wins.
func (c *Classifier) Classify(w model.WordAnalysis) model.WordAnalysis {
	key := lookupKey(w.SpanishWord)
	if key == "" {
		return w
	}

	if _, ok := c.prepositions[key]; ok {
		w.PartOfSpeech = model.PosPreposition
		return w
	}

	if _, ok := c.determiners[key]; ok {
		if _, def := c.definite[key]; def {
			w.PartOfSpeech = model.PosArticle
			w.Form = model.ArticleDefinite
			return w
		}
		if _, indef := c.indefinite[key]; indef {
			w.PartOfSpeech = model.PosArticle
			w.Form = model.ArticleIndefinite
			return w
		}
		w.PartOfSpeech = model.PosDeterminer
		return w
	}

	if _, ok := c.conjunctions[key]; ok {
		w.PartOfSpeech = model.PosConjunction
	}
	return w
}

// lookupKey lower-cases the surface form and strips surrounding punctuation such as "¿" or ",".
// The stored SpanishWord is never modified.
func lookupKey(surface string) string {
	trimmed := strings.TrimFunc(surface, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return strings.ToLower(trimmed)
}
