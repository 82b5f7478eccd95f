package service

import (
	"context"
	"sort"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/internal/util"
)

type ProgressService struct {
	repo       *repository.ProgressRepository
	curriculum *repository.CurriculumRepository
	sentences  *repository.SentenceRepository
	tracker    *ProgressTracker
	events     EventRecorder
}

func NewProgressService(
	repo *repository.ProgressRepository,
	curriculum *repository.CurriculumRepository,
	sentences *repository.SentenceRepository,
	tracker *ProgressTracker,
	events EventRecorder,
) *ProgressService {
	return &ProgressService{
		repo:       repo,
		curriculum: curriculum,
		sentences:  sentences,
		tracker:    tracker,
		events:     events,
	}
}

// RecordLessonProgress validates the input, upserts the lesson row and bumps
// the user's completed-lesson counter the first time the lesson completes.
func (s *ProgressService) RecordLessonProgress(ctx context.Context, userID, lessonID uint, progress int, completed *bool) (*model.UserLessonProgress, error) {
	if progress < 0 || progress > 100 {
		return nil, util.NewValidation("progress", "must be between 0 and 100")
	}
	if _, err := s.curriculum.FindLessonWithTrack(ctx, lessonID); err != nil {
		return nil, err
	}

	previous, err := s.repo.FindLessonProgress(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	wasCompleted := previous != nil && previous.Completed

	row, err := s.tracker.UpdateProgress(ctx, userID, lessonID, progress, completed)
	if err != nil {
		s.events.Record(ctx, model.EventLevelError, "progress_service", "Progress update failed", map[string]interface{}{
			"userId":   userID,
			"lessonId": lessonID,
			"error":    err.Error(),
		})
		return nil, err
	}

	if !wasCompleted && row.Completed {
		if err := s.repo.IncrementLessonsCompleted(ctx, userID); err != nil {
			s.events.Record(ctx, model.EventLevelError, "progress_service", "Lessons-completed rollup failed", map[string]interface{}{
				"userId":   userID,
				"lessonId": lessonID,
				"error":    err.Error(),
			})
			return nil, err
		}
	}
	return row, nil
}

// RecordExerciseAttempt stores a graded answer and recomputes the user's
// average score and topic strengths/weaknesses from every attempt on record.
func (s *ProgressService) RecordExerciseAttempt(ctx context.Context, userID, sentenceID uint, correct bool, answer string) (*model.UserProgress, error) {
	if _, err := s.sentences.FindByID(ctx, sentenceID); err != nil {
		return nil, err
	}

	attempt := &model.ExerciseAttempt{
		UserID:     userID,
		SentenceID: sentenceID,
		Correct:    correct,
		UserAnswer: answer,
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	total, correctCount, err := s.repo.AttemptStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAverageScore(ctx, userID, AverageScore(total, correctCount)); err != nil {
		return nil, err
	}

	stats, err := s.repo.TopicStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	strengths, weaknesses := TopicSkills(stats)
	if err := s.repo.SetTopicSkills(ctx, userID, strengths, weaknesses); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateUserProgress(ctx, userID)
}

const (
	minTopicAttempts  = 3
	strengthThreshold = 80.0
	weaknessThreshold = 50.0
	maxTopicSkills    = 3
)

// TopicSkills picks the user's best and worst topics. A topic needs
// minTopicAttempts attempts before it counts; strengths score at least 80%,
// weaknesses below 50%. Each list holds at most three topics, best (or worst) first.
func TopicSkills(stats []repository.TopicStat) (strengths, weaknesses []string) {
	type scored struct {
		topic string
		score float64
	}
	var strong, weak []scored
	for _, st := range stats {
		if st.Total < minTopicAttempts {
			continue
		}
		score := AverageScore(st.Total, st.Correct)
		switch {
		case score >= strengthThreshold:
			strong = append(strong, scored{st.Topic, score})
		case score < weaknessThreshold:
			weak = append(weak, scored{st.Topic, score})
		}
	}
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].score > strong[j].score })
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].score < weak[j].score })

	strengths, weaknesses = []string{}, []string{}
	for i := 0; i < len(strong) && i < maxTopicSkills; i++ {
		strengths = append(strengths, strong[i].topic)
	}
	for i := 0; i < len(weak) && i < maxTopicSkills; i++ {
		weaknesses = append(weaknesses, weak[i].topic)
	}
	return strengths, weaknesses
}

// AverageScore is the share of correct attempts as a percentage.
func AverageScore(total, correct int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func (s *ProgressService) AddWordsLearned(ctx context.Context, userID uint, words int) (*model.UserProgress, error) {
	if words <= 0 {
		return nil, util.NewValidation("words", "must be positive")
	}
	if err := s.repo.AddWordsLearned(ctx, userID, words); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateUserProgress(ctx, userID)
}

type ProgressSummary struct {
	Overall *model.UserProgress        `json:"overall"`
	Lessons []model.UserLessonProgress `json:"lessons"`
}

func (s *ProgressService) GetSummary(ctx context.Context, userID uint) (*ProgressSummary, error) {
	overall, err := s.repo.GetOrCreateUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repo.ListLessonProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProgressSummary{Overall: overall, Lessons: lessons}, nil
}
