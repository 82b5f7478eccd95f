package service

import (
	"context"
	"time"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
)

// ProgressTracker upserts per-lesson progress. It neither clamps progress nor
// touches the user's aggregate counters.
type ProgressTracker struct {
	repo *repository.ProgressRepository
	now  func() time.Time
}

func NewProgressTracker(repo *repository.ProgressRepository) *ProgressTracker {
	return &ProgressTracker{repo: repo, now: time.Now}
}

func (t *ProgressTracker) UpdateProgress(ctx context.Context, userID, lessonID uint, progress int, completed *bool) (*model.UserLessonProgress, error) {
	isCompleted := (completed != nil && *completed) || progress >= 100

	row, err := t.repo.FindLessonProgress(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	if row != nil {
		row.Progress = progress
		row.Completed = isCompleted
		row.LastAccessedAt = t.now()
		if err := t.repo.UpdateLessonProgress(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	}

	row = &model.UserLessonProgress{
		UserID:         userID,
		LessonID:       lessonID,
		Progress:       progress,
		Completed:      isCompleted,
		LastAccessedAt: t.now(),
	}
	if err := t.repo.CreateLessonProgress(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}
