package lexicon

import (
	"strings"
	"unicode/utf8"

	"spanish_learning_backend/internal/model"
)

var infinitiveSuffixes = []string{"ar", "er", "ir"}

// Normalizer post-processes the word-by-word analysis returned by the language model.
// Normalize and NormalizeForCurriculum are pure and idempotent.
type Normalizer struct {
	classifier  *Classifier
	corrections map[string][]Correction
}

// NewNormalizer builds a normalizer around a classifier and a gloss correction table.
func NewNormalizer(classifier *Classifier, corrections []Correction) *Normalizer {
	byForm := make(map[string][]Correction, len(corrections))
	for _, c := range corrections {
		form := strings.ToLower(strings.TrimSpace(c.Form))
		byForm[form] = append(byForm[form], c)
	}
	return &Normalizer{classifier: classifier, corrections: byForm}
}

var defaultNormalizer = NewNormalizer(defaultClassifier, defaultTables.Corrections)

// DefaultNormalizer uses the embedded tables and corrections.
func DefaultNormalizer() *Normalizer {
	return defaultNormalizer
}

func (n *Normalizer) Normalize(words []model.WordAnalysis) []model.WordAnalysis {
	out := make([]model.WordAnalysis, 0, len(words))
	for _, w := range words {
		out = append(out, n.normalizeToken(w))
	}
	return out
}

// NormalizeForCurriculum also tags -ar/-er/-ir forms longer than two characters as infinitives
// unless the token already carries a verb-like tag. "adverb" counts as verb-like here, so
// adverbs such as "ayer" keep their tag.
func (n *Normalizer) NormalizeForCurriculum(words []model.WordAnalysis) []model.WordAnalysis {
	out := make([]model.WordAnalysis, 0, len(words))
	for _, w := range words {
		w = n.normalizeToken(w)
		if looksInfinitive(w) {
			w.PartOfSpeech = model.PosVerbInfinitive
		}
		out = append(out, w)
	}
	return out
}

func (n *Normalizer) normalizeToken(w model.WordAnalysis) model.WordAnalysis {
	w = n.classifier.Classify(w)

	pos := strings.ToLower(strings.TrimSpace(w.PartOfSpeech))
	for _, c := range n.corrections[lookupKey(w.SpanishWord)] {
		if c.WhenPartOfSpeech != "" && !strings.EqualFold(c.WhenPartOfSpeech, pos) {
			continue
		}
		w.EnglishWord = c.Gloss
		break
	}

	if w.Examples == nil {
		w.Examples = []model.ExamplePair{}
	}
	return w
}

func looksInfinitive(w model.WordAnalysis) bool {
	if strings.Contains(strings.ToLower(w.PartOfSpeech), "verb") {
		return false
	}
	form := lookupKey(w.SpanishWord)
	if utf8.RuneCountInString(form) <= 2 {
		return false
	}
	for _, suffix := range infinitiveSuffixes {
		if strings.HasSuffix(form, suffix) {
			return true
		}
	}
	return false
}
