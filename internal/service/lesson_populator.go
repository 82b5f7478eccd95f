package service

import (
	"context"
	"errors"
	"fmt"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/internal/util"
	"spanish_learning_backend/pkg/logger"
	"spanish_learning_backend/pkg/monitoring"
	"spanish_learning_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DifficultyForLevel maps a CEFR level to the generator's difficulty label.
func DifficultyForLevel(level string) string {
	switch level {
	case model.LevelA1:
		return "beginner"
	case model.LevelA2:
		return "elementary"
	case model.LevelB1:
		return "intermediate"
	case model.LevelB2:
		return "upper-intermediate"
	default:
		return "advanced"
	}
}

// PopulateOverrides replaces the values derived from the lesson and its track.
type PopulateOverrides struct {
	Difficulty   string `json:"difficulty"`
	Topic        string `json:"topic"`
	GrammarFocus string `json:"grammarFocus"`
}

// SentenceSource is what the populator needs from the sentence generator.
type SentenceSource interface {
	Generate(ctx context.Context, params GenerateParams) (*model.LearningSentence, error)
}

type LessonPopulator struct {
	curriculum *repository.CurriculumRepository
	sentences  *repository.SentenceRepository
	generator  SentenceSource
	lock       LessonLock
	events     EventRecorder
	maxPerCall int
}

func NewLessonPopulator(
	curriculum *repository.CurriculumRepository,
	sentences *repository.SentenceRepository,
	generator SentenceSource,
	lock LessonLock,
	events EventRecorder,
	maxPerCall int,
) *LessonPopulator {
	if lock == nil {
		lock = noopLessonLock{}
	}
	return &LessonPopulator{
		curriculum: curriculum,
		sentences:  sentences,
		generator:  generator,
		lock:       lock,
		events:     events,
		maxPerCall: maxPerCall,
	}
}

// PopulateLesson generates count sentences one after another and appends each
// to the end of the lesson. It returns how many were added before any error.
func (p *LessonPopulator) PopulateLesson(ctx context.Context, lessonID uint, count int, overrides PopulateOverrides) (int, error) {
	if count <= 0 {
		return 0, util.NewValidation("count", "must be positive")
	}
	if p.maxPerCall > 0 && count > p.maxPerCall {
		return 0, util.NewValidation("count", fmt.Sprintf("must not exceed %d", p.maxPerCall))
	}

	lease, ok, err := p.lock.Acquire(ctx, lessonID)
	if err != nil {
		p.events.Record(ctx, model.EventLevelError, "lesson_populator", "Failed to acquire lesson lock", map[string]interface{}{
			"lessonId": lessonID,
			"error":    err.Error(),
		})
		return 0, err
	}
	if !ok {
		return 0, util.ErrLessonBusy
	}
	defer lease.Release()

	return p.populate(ctx, lease, lessonID, count, overrides)
}

func (p *LessonPopulator) populate(ctx context.Context, lease LessonLease, lessonID uint, count int, overrides PopulateOverrides) (int, error) {
	ctx, span := tracing.Tracer.Start(ctx, "LessonPopulator.PopulateLesson")
	defer span.End()
	span.SetAttributes(attribute.Int("lesson.id", int(lessonID)), attribute.Int("lesson.count", count))

	generated := 0
	for i := 0; i < count; i++ {
		if _, err := p.insertOne(ctx, lessonID, overrides); err != nil {
			p.events.Record(ctx, model.EventLevelError, "lesson_populator", "Lesson population failed", map[string]interface{}{
				"lessonId":  lessonID,
				"generated": generated,
				"requested": count,
				"error":     err.Error(),
			})
			return generated, err
		}
		generated++

		if generated < count {
			if err := lease.Extend(ctx); err != nil {
				p.events.Record(ctx, model.EventLevelError, "lesson_populator", "Lesson lock lost during population", map[string]interface{}{
					"lessonId":  lessonID,
					"generated": generated,
					"requested": count,
					"error":     err.Error(),
				})
				if errors.Is(err, ErrLeaseLost) {
					return generated, fmt.Errorf("%w: %v", util.ErrLessonBusy, err)
				}
				return generated, err
			}
		}
	}

	if generated > 0 {
		monitoring.LessonsPopulated.Inc()
	}
	return generated, nil
}

func (p *LessonPopulator) insertOne(ctx context.Context, lessonID uint, overrides PopulateOverrides) (*model.OrderedSentence, error) {
	lesson, err := p.curriculum.FindLessonWithTrack(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	params := GenerateParams{
		Difficulty:   DifficultyForLevel(lesson.Track.Level),
		Topic:        lesson.VocabularyFocus,
		GrammarFocus: lesson.GrammarFocus,
		CEFRLevel:    lesson.Track.Level,
		Curriculum:   true,
	}
	if overrides.Difficulty != "" {
		params.Difficulty = overrides.Difficulty
	}
	if overrides.Topic != "" {
		params.Topic = overrides.Topic
	}
	if overrides.GrammarFocus != "" {
		params.GrammarFocus = overrides.GrammarFocus
	}

	sentence, err := p.generator.Generate(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := p.sentences.Create(ctx, sentence); err != nil {
		return nil, err
	}

	maxIndex, err := p.curriculum.MaxOrderIndex(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	link := &model.LessonSentence{
		LessonID:   lessonID,
		SentenceID: sentence.ID,
		OrderIndex: maxIndex + 1,
	}
	if err := p.curriculum.AddLessonSentence(ctx, link); err != nil {
		return nil, err
	}

	return &model.OrderedSentence{LearningSentence: *sentence, OrderIndex: link.OrderIndex}, nil
}

// GenerateTrack populates every lesson of a track in lesson order. The first
// failure stops the run; sentences already stored stay in place.
func (p *LessonPopulator) GenerateTrack(ctx context.Context, trackID uint, perLesson int) (int, error) {
	track, err := p.curriculum.FindTrackByID(ctx, trackID)
	if err != nil {
		return 0, err
	}
	lessons, err := p.curriculum.ListLessons(ctx, trackID)
	if err != nil {
		p.events.Record(ctx, model.EventLevelError, "lesson_populator", "Failed to list lessons", map[string]interface{}{
			"trackId": trackID,
			"error":   err.Error(),
		})
		return 0, err
	}

	total := 0
	for _, lesson := range lessons {
		n, err := p.PopulateLesson(ctx, lesson.ID, perLesson, PopulateOverrides{})
		total += n
		if err != nil {
			return total, err
		}
		logger.Log.Info("Lesson populated",
			zap.String("track", track.Code),
			zap.Int("lesson_number", lesson.LessonNumber),
			zap.Int("sentences", n),
			zap.Int("track_total", total),
		)
	}

	p.events.Record(ctx, model.EventLevelInfo, "lesson_populator", "Track generated", map[string]interface{}{
		"track":     track.Code,
		"lessons":   len(lessons),
		"sentences": total,
	})
	return total, nil
}

// ReorderLesson assigns indices 0..n-1 following sentenceIDs, which must list
// exactly the sentences currently in the lesson.
func (p *LessonPopulator) ReorderLesson(ctx context.Context, lessonID uint, sentenceIDs []uint) ([]model.OrderedSentence, error) {
	if _, err := p.curriculum.FindLessonWithTrack(ctx, lessonID); err != nil {
		return nil, err
	}

	links, err := p.curriculum.ListLessonSentenceLinks(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	current := make(map[uint]bool, len(links))
	for _, l := range links {
		current[l.SentenceID] = true
	}
	seen := make(map[uint]bool, len(sentenceIDs))
	for _, id := range sentenceIDs {
		if !current[id] {
			return nil, util.NewValidation("sentenceIds", fmt.Sprintf("sentence %d is not part of lesson %d", id, lessonID))
		}
		if seen[id] {
			return nil, util.NewValidation("sentenceIds", fmt.Sprintf("sentence %d is listed twice", id))
		}
		seen[id] = true
	}
	if len(seen) != len(current) {
		return nil, util.NewValidation("sentenceIds", "must list every sentence of the lesson")
	}

	if err := p.curriculum.ReorderLessonSentences(ctx, lessonID, sentenceIDs); err != nil {
		p.events.Record(ctx, model.EventLevelError, "lesson_populator", "Lesson reorder failed", map[string]interface{}{
			"lessonId": lessonID,
			"error":    err.Error(),
		})
		return nil, err
	}
	return p.curriculum.ListLessonSentences(ctx, lessonID)
}

// RemoveSentence detaches a sentence from a lesson without renumbering the rest.
func (p *LessonPopulator) RemoveSentence(ctx context.Context, lessonID, sentenceID uint) error {
	return p.curriculum.RemoveLessonSentence(ctx, lessonID, sentenceID)
}
