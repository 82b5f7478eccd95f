package service

import (
	"context"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
)

// CurriculumService is the read side of tracks and lessons.
type CurriculumService struct {
	repo *repository.CurriculumRepository
}

func NewCurriculumService(repo *repository.CurriculumRepository) *CurriculumService {
	return &CurriculumService{repo: repo}
}

func (s *CurriculumService) ListTracks(ctx context.Context) ([]model.CurriculumTrack, error) {
	return s.repo.ListTracks(ctx)
}

func (s *CurriculumService) ListLessons(ctx context.Context, trackID uint) ([]model.Lesson, error) {
	if _, err := s.repo.FindTrackByID(ctx, trackID); err != nil {
		return nil, err
	}
	return s.repo.ListLessons(ctx, trackID)
}

type LessonDetail struct {
	model.Lesson
	TrackCode  string `json:"trackCode"`
	TrackLevel string `json:"trackLevel"`
}

func (s *CurriculumService) GetLesson(ctx context.Context, lessonID uint) (*LessonDetail, error) {
	lesson, err := s.repo.FindLessonWithTrack(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	return &LessonDetail{
		Lesson:     *lesson,
		TrackCode:  lesson.Track.Code,
		TrackLevel: lesson.Track.Level,
	}, nil
}

// LessonSentences returns the lesson's sentences by ascending order index.
func (s *CurriculumService) LessonSentences(ctx context.Context, lessonID uint) ([]model.OrderedSentence, error) {
	if _, err := s.repo.FindLessonWithTrack(ctx, lessonID); err != nil {
		return nil, err
	}
	return s.repo.ListLessonSentences(ctx, lessonID)
}
