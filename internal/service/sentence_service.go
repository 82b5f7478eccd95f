package service

import (
	"context"
	"strings"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/internal/util"
)

// SentenceAnalyzer re-derives the breakdown of edited text.
type SentenceAnalyzer interface {
	Analyze(ctx context.Context, spanishText string, curriculum bool) (*SentenceAnalysis, error)
}

type SentenceService struct {
	repo     *repository.SentenceRepository
	analyzer SentenceAnalyzer
	events   EventRecorder
}

func NewSentenceService(repo *repository.SentenceRepository, analyzer SentenceAnalyzer, events EventRecorder) *SentenceService {
	return &SentenceService{repo: repo, analyzer: analyzer, events: events}
}

func (s *SentenceService) Get(ctx context.Context, id uint) (*model.LearningSentence, error) {
	return s.repo.FindByID(ctx, id)
}

type SentenceUpdate struct {
	SpanishText  *string `json:"spanishText"`
	EnglishText  *string `json:"englishText"`
	Difficulty   *string `json:"difficulty"`
	Topic        *string `json:"topic"`
	GrammarFocus *string `json:"grammarFocus"`
}

// Update edits a stored sentence. A changed Spanish text is re-analyzed so the
// word breakdown matches it; the analysis translation is used unless the
// caller also supplied one.
func (s *SentenceService) Update(ctx context.Context, id uint, in SentenceUpdate) (*model.LearningSentence, error) {
	sentence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.SpanishText != nil {
		text := strings.TrimSpace(*in.SpanishText)
		if text == "" {
			return nil, util.NewValidation("spanishText", "must not be empty")
		}
		if text != sentence.SpanishText {
			analysis, err := s.analyzer.Analyze(ctx, text, true)
			if err != nil {
				s.events.Record(ctx, model.EventLevelError, "sentence_service", "Re-analysis of edited sentence failed", map[string]interface{}{
					"sentenceId": id,
					"error":      err.Error(),
				})
				return nil, err
			}
			sentence.SpanishText = text
			sentence.EnglishText = analysis.EnglishText
			sentence.WordByWord = analysis.WordByWord
		}
	}
	if in.EnglishText != nil {
		text := strings.TrimSpace(*in.EnglishText)
		if text == "" {
			return nil, util.NewValidation("englishText", "must not be empty")
		}
		sentence.EnglishText = text
	}
	if in.Difficulty != nil {
		sentence.Difficulty = *in.Difficulty
	}
	if in.Topic != nil {
		sentence.Topic = *in.Topic
	}
	if in.GrammarFocus != nil {
		sentence.GrammarFocus = *in.GrammarFocus
	}

	if err := s.repo.Update(ctx, sentence); err != nil {
		return nil, err
	}
	return sentence, nil
}

// Delete removes the sentence from every lesson and then from the store.
func (s *SentenceService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
