package model

import "gorm.io/datatypes"

// Part-of-speech tags written by the lexical classifier.
const (
	PosPreposition    = "preposition"
	PosArticle        = "article"
	PosDeterminer     = "determiner"
	PosConjunction    = "conjunction"
	PosVerbInfinitive = "verb (infinitive)"
	ArticleDefinite   = "definite"
	ArticleIndefinite = "indefinite"
)

// ExamplePair is one usage example of a word.
type ExamplePair struct {
	Spanish string `json:"spanish"`
	English string `json:"english"`
}

// WordAnalysis is one token of a sentence's word-by-word breakdown.
// Pronunciation fields and Examples are always serialized so clients never branch on absence.
type WordAnalysis struct {
	SpanishWord        string                       `json:"spanishWord"`
	Lemma              string                       `json:"lemma,omitempty"`
	EnglishWord        string                       `json:"englishWord"`
	PartOfSpeech       string                       `json:"partOfSpeech"`
	Form               string                       `json:"form,omitempty"`
	Gender             string                       `json:"gender,omitempty"`
	Number             string                       `json:"number,omitempty"`
	Formality          string                       `json:"formality,omitempty"`
	PronunciationLatam string                       `json:"pronunciationLatam"`
	PronunciationSpain string                       `json:"pronunciationSpain"`
	Examples           []ExamplePair                `json:"examples"`
	Conjugations       map[string]map[string]string `json:"conjugations,omitempty"`
}

// swagger:model LearningSentence
type LearningSentence struct {
	BaseModel
	SpanishText  string                            `gorm:"type:text;not null" json:"spanishText"`
	EnglishText  string                            `gorm:"type:text;not null" json:"englishText"`
	Difficulty   string                            `gorm:"size:50" json:"difficulty"`
	Topic        string                            `gorm:"size:255" json:"topic"`
	GrammarFocus string                            `gorm:"size:255" json:"grammarFocus"`
	WordByWord   datatypes.JSONSlice[WordAnalysis] `json:"wordByWord"`
}

func (LearningSentence) TableName() string {
	return "learning_sentences"
}

// OrderedSentence is a sentence read back through its lesson position.
type OrderedSentence struct {
	LearningSentence
	OrderIndex int `json:"orderIndex"`
}
