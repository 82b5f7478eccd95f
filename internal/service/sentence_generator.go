package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"spanish_learning_backend/internal/lexicon"
	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/util"
	"spanish_learning_backend/pkg/logger"
	"spanish_learning_backend/pkg/monitoring"
	"spanish_learning_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultDifficulty   = "intermediate"
	DefaultTopic        = "everyday conversation"
	DefaultGrammarFocus = "present tense"
	DefaultCEFRLevel    = model.LevelB1
)

type GenerateParams struct {
	Difficulty   string `json:"difficulty"`
	Topic        string `json:"topic"`
	GrammarFocus string `json:"grammarFocus"`
	CEFRLevel    string `json:"cefrLevel"`
	// Curriculum selects the normalizer variant that also tags infinitives.
	Curriculum bool `json:"-"`
}

func (p GenerateParams) withDefaults() GenerateParams {
	if strings.TrimSpace(p.Difficulty) == "" {
		p.Difficulty = DefaultDifficulty
	}
	if strings.TrimSpace(p.Topic) == "" {
		p.Topic = DefaultTopic
	}
	if strings.TrimSpace(p.GrammarFocus) == "" {
		p.GrammarFocus = DefaultGrammarFocus
	}
	if strings.TrimSpace(p.CEFRLevel) == "" {
		p.CEFRLevel = DefaultCEFRLevel
	}
	return p
}

func (p GenerateParams) asMap() map[string]string {
	return map[string]string{
		"difficulty":   p.Difficulty,
		"topic":        p.Topic,
		"grammarFocus": p.GrammarFocus,
		"cefrLevel":    p.CEFRLevel,
	}
}

// generatedSentence is the JSON document the model is asked to return.
type generatedSentence struct {
	Spanish    string               `json:"spanish"`
	English    string               `json:"english"`
	WordByWord []model.WordAnalysis `json:"wordByWord"`
}

// SentenceAnalysis is the breakdown of a sentence supplied by the caller.
type SentenceAnalysis struct {
	EnglishText string               `json:"englishText"`
	WordByWord  []model.WordAnalysis `json:"wordByWord"`
}

const wordAnalysisSchema = `Each entry of "wordByWord" is an object with:
  "spanishWord" (the word exactly as it appears), "lemma", "englishWord" (gloss in context),
  "partOfSpeech" (noun, verb, adjective, adverb, pronoun, preposition, article, determiner, conjunction, interjection),
  "form" (tense/mood for verbs, "definite"/"indefinite" for articles), "gender", "number",
  "formality" (for pronouns and verbs: "formal" or "informal"),
  "pronunciationLatam", "pronunciationSpain" (simple English respellings),
  "examples" (array of {"spanish","english"} pairs, may be empty),
  "conjugations" (verbs only: {tense: {person: form}}).
Punctuation is never a separate entry.`

type SentenceGenerator struct {
	ai         ContentGenerator
	normalizer *lexicon.Normalizer
	events     EventRecorder
}

func NewSentenceGenerator(ai ContentGenerator, normalizer *lexicon.Normalizer, events EventRecorder) *SentenceGenerator {
	if normalizer == nil {
		normalizer = lexicon.DefaultNormalizer()
	}
	if events == nil {
		// A nil *SystemEventService only writes to the log.
		events = (*SystemEventService)(nil)
	}
	return &SentenceGenerator{ai: ai, normalizer: normalizer, events: events}
}

// Generate asks the model for one sentence matching params and returns it
// normalized but unsaved.
func (g *SentenceGenerator) Generate(ctx context.Context, params GenerateParams) (*model.LearningSentence, error) {
	params = params.withDefaults()

	ctx, span := tracing.Tracer.Start(ctx, "SentenceGenerator.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("sentence.difficulty", params.Difficulty),
		attribute.String("sentence.topic", params.Topic),
		attribute.String("sentence.cefr_level", params.CEFRLevel),
	)

	systemPrompt := "You are a Spanish teacher who writes example sentences for English-speaking learners. " +
		"Reply with a single JSON object and nothing else.\n" +
		`The object has the keys "spanish" (the sentence), "english" (a natural translation) and "wordByWord" (an array).` + "\n" +
		wordAnalysisSchema

	userPrompt := fmt.Sprintf(
		"Write one %s Spanish sentence at CEFR level %s about %s that practises %s.",
		params.Difficulty, params.CEFRLevel, params.Topic, params.GrammarFocus,
	)

	start := time.Now()
	raw, err := g.ai.GenerateJSON(ctx, systemPrompt, userPrompt)
	monitoring.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, g.fail(ctx, span, params.asMap(), "model call failed", err)
	}

	var out generatedSentence
	if err := decodeModelJSON(raw, &out); err != nil {
		return nil, g.fail(ctx, span, params.asMap(), "unparseable model output", err)
	}
	if strings.TrimSpace(out.Spanish) == "" || strings.TrimSpace(out.English) == "" || len(out.WordByWord) == 0 {
		return nil, g.fail(ctx, span, params.asMap(), "model output is missing spanish, english or wordByWord", nil)
	}

	words := g.normalize(out.WordByWord, params.Curriculum)

	sentence := &model.LearningSentence{
		SpanishText:  strings.TrimSpace(out.Spanish),
		EnglishText:  strings.TrimSpace(out.English),
		Difficulty:   params.Difficulty,
		Topic:        params.Topic,
		GrammarFocus: params.GrammarFocus,
		WordByWord:   words,
	}

	monitoring.SentencesGenerated.WithLabelValues(params.CEFRLevel).Inc()
	logger.Log.Info("Generated sentence",
		zap.String("spanish", sentence.SpanishText),
		zap.String("difficulty", params.Difficulty),
		zap.String("topic", params.Topic),
		zap.String("grammar_focus", params.GrammarFocus),
		zap.String("cefr_level", params.CEFRLevel),
		zap.Int("words", len(words)),
	)
	return sentence, nil
}

// Analyze produces the word-by-word breakdown and translation of a given
// Spanish sentence, using the same output contract as Generate.
func (g *SentenceGenerator) Analyze(ctx context.Context, spanishText string, curriculum bool) (*SentenceAnalysis, error) {
	spanishText = strings.TrimSpace(spanishText)
	if spanishText == "" {
		return nil, util.NewValidation("spanishText", "must not be empty")
	}

	ctx, span := tracing.Tracer.Start(ctx, "SentenceGenerator.Analyze")
	defer span.End()

	systemPrompt := "You are a Spanish teacher who explains sentences word by word for English-speaking learners. " +
		"Reply with a single JSON object and nothing else.\n" +
		`The object has the keys "english" (a natural translation) and "wordByWord" (an array).` + "\n" +
		wordAnalysisSchema

	params := map[string]string{"spanishText": spanishText}

	raw, err := g.ai.GenerateJSON(ctx, systemPrompt, "Analyze this sentence: "+spanishText)
	if err != nil {
		return nil, g.fail(ctx, span, params, "model call failed", err)
	}

	var out generatedSentence
	if err := decodeModelJSON(raw, &out); err != nil {
		return nil, g.fail(ctx, span, params, "unparseable model output", err)
	}
	if strings.TrimSpace(out.English) == "" || len(out.WordByWord) == 0 {
		return nil, g.fail(ctx, span, params, "model output is missing english or wordByWord", nil)
	}

	logger.Log.Info("Analyzed sentence", zap.String("spanish", spanishText), zap.Int("words", len(out.WordByWord)))
	return &SentenceAnalysis{
		EnglishText: strings.TrimSpace(out.English),
		WordByWord:  g.normalize(out.WordByWord, curriculum),
	}, nil
}

func (g *SentenceGenerator) normalize(words []model.WordAnalysis, curriculum bool) []model.WordAnalysis {
	if curriculum {
		return g.normalizer.NormalizeForCurriculum(words)
	}
	return g.normalizer.Normalize(words)
}

func (g *SentenceGenerator) fail(ctx context.Context, span trace.Span, params map[string]string, reason string, cause error) error {
	genErr := &util.GenerationError{Params: params, Reason: reason, Err: cause}
	span.RecordError(genErr)
	span.SetStatus(codes.Error, reason)
	monitoring.GenerationFailures.WithLabelValues(reason).Inc()

	details := map[string]interface{}{"reason": reason}
	for k, v := range params {
		details[k] = v
	}
	if cause != nil {
		details["error"] = cause.Error()
	}
	g.events.Record(ctx, model.EventLevelError, "sentence_generator", "Sentence generation failed", details)
	return genErr
}

// decodeModelJSON parses a model reply, tolerating a surrounding markdown code fence.
func decodeModelJSON(raw string, v interface{}) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fmt.Errorf("empty response")
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return json.Unmarshal([]byte(strings.TrimSpace(text)), v)
}
