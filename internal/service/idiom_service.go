package service

import (
	"context"
	"strings"

	"spanish_learning_backend/internal/lexicon"
	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/util"
	"spanish_learning_backend/pkg/logger"

	"go.uber.org/zap"
)

type IdiomParams struct {
	Theme     string `json:"theme"`
	CEFRLevel string `json:"cefrLevel"`
}

// Idiom is a Spanish saying with its meaning and a worked example.
type Idiom struct {
	Spanish            string               `json:"spanish"`
	LiteralTranslation string               `json:"literalTranslation"`
	Meaning            string               `json:"meaning"`
	EnglishEquivalent  string               `json:"englishEquivalent"`
	Region             string               `json:"region"`
	Example            model.ExamplePair    `json:"example"`
	WordByWord         []model.WordAnalysis `json:"wordByWord"`
}

type IdiomService struct {
	generator  ContentGenerator
	normalizer *lexicon.Normalizer
	events     EventRecorder
}

func NewIdiomService(generator ContentGenerator, normalizer *lexicon.Normalizer, events EventRecorder) *IdiomService {
	if normalizer == nil {
		normalizer = lexicon.DefaultNormalizer()
	}
	return &IdiomService{generator: generator, normalizer: normalizer, events: events}
}

func (s *IdiomService) Generate(ctx context.Context, params IdiomParams) (*Idiom, error) {
	if params.CEFRLevel == "" {
		params.CEFRLevel = DefaultCEFRLevel
	}
	theme := params.Theme
	if theme == "" {
		theme = "everyday life"
	}

	system := "You are a Spanish teacher who collects idioms and proverbs (refranes) from Spanish-speaking countries. " +
		"Reply with a single JSON object with the keys " +
		`"spanish", "literalTranslation", "meaning", "englishEquivalent", "region", ` +
		`"example" (an object {"spanish","english"} using the idiom) and "wordByWord" (an array analysing the idiom itself).` + "\n" +
		wordAnalysisSchema
	user := "Give one idiom about " + theme + " that a learner at CEFR level " + params.CEFRLevel + " can understand."

	failParams := map[string]string{"theme": theme, "cefrLevel": params.CEFRLevel}

	raw, err := s.generator.GenerateJSON(ctx, system, user)
	if err != nil {
		return nil, s.fail(ctx, failParams, "model call failed", err)
	}

	var idiom Idiom
	if err := decodeModelJSON(raw, &idiom); err != nil {
		return nil, s.fail(ctx, failParams, "unparseable model output", err)
	}
	if strings.TrimSpace(idiom.Spanish) == "" || strings.TrimSpace(idiom.Meaning) == "" {
		return nil, s.fail(ctx, failParams, "model output is missing spanish or meaning", nil)
	}

	idiom.WordByWord = s.normalizer.Normalize(idiom.WordByWord)
	logger.Log.Info("Generated idiom", zap.String("spanish", idiom.Spanish), zap.String("theme", theme))
	return &idiom, nil
}

func (s *IdiomService) fail(ctx context.Context, params map[string]string, reason string, cause error) error {
	details := map[string]interface{}{"reason": reason, "theme": params["theme"]}
	if cause != nil {
		details["error"] = cause.Error()
	}
	s.events.Record(ctx, model.EventLevelWarn, "idiom_service", "Idiom generation failed", details)
	return &util.GenerationError{Params: params, Reason: reason, Err: cause}
}
