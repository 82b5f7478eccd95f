package service

import (
	"context"
	"fmt"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/pkg/logger"

	"go.uber.org/zap"
)

type trackDefinition struct {
	Code        string
	Title       string
	Description string
	Level       string
	Icon        string
}

var trackDefinitions = []trackDefinition{
	{Code: "basic", Title: "Spanish Basics", Description: "Greetings, numbers and the everyday words every learner needs first.", Level: model.LevelA1, Icon: "sprout"},
	{Code: "travel", Title: "Travel Spanish", Description: "Get around, order food and handle common situations abroad.", Level: model.LevelA2, Icon: "plane"},
	{Code: "grammar", Title: "Grammar Foundations", Description: "Build confidence with the tenses and structures of intermediate Spanish.", Level: model.LevelB1, Icon: "book"},
	{Code: "fluency", Title: "Conversational Fluency", Description: "Express opinions, tell stories and keep a conversation going.", Level: model.LevelB2, Icon: "chat"},
	{Code: "media", Title: "News and Media", Description: "Understand articles, broadcasts and formal Spanish.", Level: model.LevelC1, Icon: "newspaper"},
	{Code: "wisdom", Title: "Proverbs and Sayings", Description: "Learn the refranes and expressions native speakers use.", Level: model.LevelQ, Icon: "lightbulb"},
}

var vocabularyTopics = map[string][]string{
	model.LevelA1: {
		"Greetings", "Numbers", "Colors", "Family", "Food and drinks", "Days and months",
		"The house", "Animals", "Clothes", "The body", "Weather", "School",
	},
	model.LevelA2: {
		"At the airport", "Hotels", "Restaurants", "Directions", "Shopping", "Transportation",
		"Health and the doctor", "Hobbies", "The city", "Sports", "Daily routine", "Holidays",
	},
	model.LevelB1: {
		"Work and careers", "Technology", "Environment", "Education", "Relationships",
		"Travel experiences", "Culture and traditions", "Money and banking", "Housing",
		"Health and wellbeing", "Entertainment", "Food culture",
	},
	model.LevelB2: {
		"Current events", "Opinions and debate", "Society", "Science", "Art and literature",
		"Business", "Politics", "Psychology", "History", "Media and advertising",
		"Law and justice", "Globalization",
	},
	model.LevelC1: {
		"Journalism", "Economics", "Philosophy", "Academic writing", "Diplomacy",
		"Film criticism", "Medicine and research", "Regional dialects", "Literary analysis",
		"Public speaking", "Ethics", "Innovation",
	},
	model.LevelQ: {
		"Proverbs about time", "Proverbs about friendship", "Proverbs about money",
		"Proverbs about work", "Proverbs about love", "Proverbs about patience",
		"Proverbs about wisdom", "Proverbs about family", "Proverbs about luck",
		"Proverbs about food", "Proverbs about nature", "Proverbs about words",
	},
}

// grammarBreakpoints holds the labels for lessons 1-10, 11-20, 21-30 and 31+.
var grammarBreakpoints = map[string][4]string{
	model.LevelA1: {"Present tense", "Basic questions", "Adjectives and articles", "Nouns and pronouns"},
	model.LevelA2: {"Past tense (preterite)", "Reflexive verbs", "Imperfect tense", "Direct and indirect objects"},
	model.LevelB1: {"Present perfect", "Future tense", "Conditional", "Subjunctive introduction"},
	model.LevelB2: {"Present subjunctive", "Imperfect subjunctive", "Passive voice", "Relative clauses"},
	model.LevelC1: {"Advanced subjunctive", "Conditional perfect", "Idiomatic expressions", "Complex sentence structures"},
}

const (
	wisdomGrammarFocus  = "Proverbs and sayings"
	standardLessonCount = 37
	wisdomLessonCount   = 30
)

// LessonCountFor is the number of lessons seeded for a track level.
func LessonCountFor(level string) int {
	if level == model.LevelQ {
		return wisdomLessonCount
	}
	return standardLessonCount
}

// VocabularyFocusFor picks the topic of a lesson round-robin from the level's topic list.
func VocabularyFocusFor(level string, lessonNumber int) string {
	topics, ok := vocabularyTopics[level]
	if !ok || len(topics) == 0 || lessonNumber < 1 {
		return ""
	}
	return topics[(lessonNumber-1)%len(topics)]
}

// GrammarFocusFor maps a lesson number to the level's grammar label.
func GrammarFocusFor(level string, lessonNumber int) string {
	labels, ok := grammarBreakpoints[level]
	if !ok {
		return wisdomGrammarFocus
	}
	switch {
	case lessonNumber <= 10:
		return labels[0]
	case lessonNumber <= 20:
		return labels[1]
	case lessonNumber <= 30:
		return labels[2]
	default:
		return labels[3]
	}
}

type CurriculumSeeder struct {
	repo   *repository.CurriculumRepository
	events EventRecorder
}

func NewCurriculumSeeder(repo *repository.CurriculumRepository, events EventRecorder) *CurriculumSeeder {
	return &CurriculumSeeder{repo: repo, events: events}
}

// SeedIfEmpty creates the fixed tracks and their lessons unless any track
// already exists. It reports whether seeding ran.
//
// The guard is coarse: a run that failed halfway leaves a partial curriculum
// that later calls will not complete. Such tracks are reported as warnings.
func (s *CurriculumSeeder) SeedIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.repo.CountTracks(ctx)
	if err != nil {
		s.events.Record(ctx, model.EventLevelError, "curriculum_seeder", "Failed to count tracks", map[string]interface{}{"error": err.Error()})
		return false, err
	}
	if count > 0 {
		logger.Log.Info("Curriculum already seeded", zap.Int64("tracks", count))
		s.warnIncomplete(ctx)
		return false, nil
	}

	for _, def := range trackDefinitions {
		if err := s.seedTrack(ctx, def); err != nil {
			s.events.Record(ctx, model.EventLevelError, "curriculum_seeder", "Curriculum seeding aborted", map[string]interface{}{
				"track": def.Code,
				"error": err.Error(),
			})
			return true, err
		}
	}

	s.events.Record(ctx, model.EventLevelInfo, "curriculum_seeder", "Curriculum seeded", map[string]interface{}{
		"tracks": len(trackDefinitions),
	})
	return true, nil
}

func (s *CurriculumSeeder) seedTrack(ctx context.Context, def trackDefinition) error {
	track := &model.CurriculumTrack{
		Code:        def.Code,
		Title:       def.Title,
		Description: def.Description,
		Level:       def.Level,
		Icon:        def.Icon,
	}
	if err := s.repo.CreateTrack(ctx, track); err != nil {
		return fmt.Errorf("create track %s: %w", def.Code, err)
	}

	lessonCount := LessonCountFor(def.Level)
	for n := 1; n <= lessonCount; n++ {
		vocabulary := VocabularyFocusFor(def.Level, n)
		grammar := GrammarFocusFor(def.Level, n)
		lesson := &model.Lesson{
			TrackID:         track.ID,
			LessonNumber:    n,
			Title:           fmt.Sprintf("Lesson %d: %s", n, vocabulary),
			Description:     fmt.Sprintf("Practice %s while learning vocabulary about %s.", grammar, vocabulary),
			GrammarFocus:    grammar,
			VocabularyFocus: vocabulary,
		}
		if err := s.repo.CreateLesson(ctx, lesson); err != nil {
			return fmt.Errorf("create lesson %d of %s: %w", n, def.Code, err)
		}
	}

	if err := s.repo.UpdateTrackTotalLessons(ctx, track.ID, lessonCount); err != nil {
		return fmt.Errorf("update total lessons of %s: %w", def.Code, err)
	}

	logger.Log.Info("Seeded track", zap.String("code", def.Code), zap.Int("lessons", lessonCount))
	return nil
}

func (s *CurriculumSeeder) warnIncomplete(ctx context.Context) {
	tracks, err := s.repo.ListTracks(ctx)
	if err != nil {
		logger.Log.Warn("Could not verify curriculum completeness", zap.Error(err))
		return
	}
	counts, err := s.repo.LessonCounts(ctx)
	if err != nil {
		logger.Log.Warn("Could not verify curriculum completeness", zap.Error(err))
		return
	}

	for _, t := range tracks {
		if counts[t.ID] != t.TotalLessons || t.TotalLessons == 0 {
			s.events.Record(ctx, model.EventLevelWarn, "curriculum_seeder", "Track is incomplete", map[string]interface{}{
				"track":        t.Code,
				"totalLessons": t.TotalLessons,
				"lessons":      counts[t.ID],
			})
		}
	}
}
