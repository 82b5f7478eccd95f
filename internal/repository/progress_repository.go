package repository

import (
	"context"
	"errors"

	"spanish_learning_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindLessonProgress returns nil without error when the user never touched the lesson.
func (r *ProgressRepository) FindLessonProgress(ctx context.Context, userID, lessonID uint) (*model.UserLessonProgress, error) {
	var row model.UserLessonProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProgressRepository) CreateLessonProgress(ctx context.Context, row *model.UserLessonProgress) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

func (r *ProgressRepository) UpdateLessonProgress(ctx context.Context, row *model.UserLessonProgress) error {
	return r.DB.WithContext(ctx).Model(row).Updates(map[string]interface{}{
		"progress":         row.Progress,
		"completed":        row.Completed,
		"last_accessed_at": row.LastAccessedAt,
	}).Error
}

func (r *ProgressRepository) ListLessonProgress(ctx context.Context, userID uint) ([]model.UserLessonProgress, error) {
	var rows []model.UserLessonProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Find(&rows).Error
	return rows, err
}

// GetOrCreateUserProgress returns the user's aggregate row, inserting an empty one if needed.
func (r *ProgressRepository) GetOrCreateUserProgress(ctx context.Context, userID uint) (*model.UserProgress, error) {
	progress := model.UserProgress{UserID: userID}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&progress).Error
	if err != nil {
		return nil, err
	}

	var row model.UserProgress
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProgressRepository) IncrementLessonsCompleted(ctx context.Context, userID uint) error {
	if _, err := r.GetOrCreateUserProgress(ctx, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumn("lessons_completed", gorm.Expr("lessons_completed + ?", 1)).Error
}

func (r *ProgressRepository) AddWordsLearned(ctx context.Context, userID uint, words int) error {
	if _, err := r.GetOrCreateUserProgress(ctx, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumn("words_learned", gorm.Expr("words_learned + ?", words)).Error
}

func (r *ProgressRepository) CreateAttempt(ctx context.Context, attempt *model.ExerciseAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

// AttemptStats counts all and correct attempts for a user.
func (r *ProgressRepository) AttemptStats(ctx context.Context, userID uint) (total, correct int64, err error) {
	err = r.DB.WithContext(ctx).Model(&model.ExerciseAttempt{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.DB.WithContext(ctx).Model(&model.ExerciseAttempt{}).
		Where("user_id = ? AND correct = ?", userID, true).
		Count(&correct).Error
	return total, correct, err
}

func (r *ProgressRepository) SetAverageScore(ctx context.Context, userID uint, score float64) error {
	if _, err := r.GetOrCreateUserProgress(ctx, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumn("average_score", score).Error
}

// TopicStat is the attempt tally for one sentence topic.
type TopicStat struct {
	Topic   string
	Total   int64
	Correct int64
}

// TopicStats groups a user's attempts by the topic of the attempted sentence.
func (r *ProgressRepository) TopicStats(ctx context.Context, userID uint) ([]TopicStat, error) {
	var stats []TopicStat
	err := r.DB.WithContext(ctx).Model(&model.ExerciseAttempt{}).
		Select("learning_sentences.topic AS topic, COUNT(*) AS total, " +
			"SUM(CASE WHEN exercise_attempts.correct THEN 1 ELSE 0 END) AS correct").
		Joins("JOIN learning_sentences ON learning_sentences.id = exercise_attempts.sentence_id").
		Where("exercise_attempts.user_id = ? AND learning_sentences.topic <> ''", userID).
		Group("learning_sentences.topic").
		Order("learning_sentences.topic").
		Scan(&stats).Error
	return stats, err
}

func (r *ProgressRepository) SetTopicSkills(ctx context.Context, userID uint, strengths, weaknesses []string) error {
	if _, err := r.GetOrCreateUserProgress(ctx, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"strengths":  datatypes.JSONSlice[string](strengths),
			"weaknesses": datatypes.JSONSlice[string](weaknesses),
		}).Error
}
