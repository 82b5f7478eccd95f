package repository

import (
	"context"
	"errors"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/util"

	"gorm.io/gorm"
)

type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

func (r *CurriculumRepository) CountTracks(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CurriculumTrack{}).Count(&count).Error
	return count, err
}

func (r *CurriculumRepository) CreateTrack(ctx context.Context, track *model.CurriculumTrack) error {
	return r.DB.WithContext(ctx).Create(track).Error
}

func (r *CurriculumRepository) UpdateTrackTotalLessons(ctx context.Context, trackID uint, total int) error {
	return r.DB.WithContext(ctx).Model(&model.CurriculumTrack{}).
		Where("id = ?", trackID).
		Update("total_lessons", total).Error
}

func (r *CurriculumRepository) ListTracks(ctx context.Context) ([]model.CurriculumTrack, error) {
	var tracks []model.CurriculumTrack
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&tracks).Error
	return tracks, err
}

func (r *CurriculumRepository) FindTrackByID(ctx context.Context, id uint) (*model.CurriculumTrack, error) {
	var track model.CurriculumTrack
	err := r.DB.WithContext(ctx).First(&track, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("track", id)
	}
	if err != nil {
		return nil, err
	}
	return &track, nil
}

func (r *CurriculumRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Create(lesson).Error
}

// ListLessons returns a track's lessons ordered by lesson number.
func (r *CurriculumRepository) ListLessons(ctx context.Context, trackID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("lesson_number ASC").
		Find(&lessons).Error
	return lessons, err
}

// LessonCounts maps track id to the number of lessons stored for it.
func (r *CurriculumRepository) LessonCounts(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		TrackID uint
		Total   int
	}
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Select("track_id, COUNT(*) AS total").
		Group("track_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.TrackID] = row.Total
	}
	return counts, nil
}

// FindLessonWithTrack loads a lesson and its owning track.
func (r *CurriculumRepository) FindLessonWithTrack(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).Preload("Track").First(&lesson, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("lesson", id)
	}
	if err != nil {
		return nil, err
	}
	if lesson.Track == nil {
		return nil, util.NewNotFound("track", lesson.TrackID)
	}
	return &lesson, nil
}

// MaxOrderIndex returns the highest order index used in a lesson, or -1 when
// the lesson has no sentences yet.
func (r *CurriculumRepository) MaxOrderIndex(ctx context.Context, lessonID uint) (int, error) {
	var maxIndex int
	err := r.DB.WithContext(ctx).Model(&model.LessonSentence{}).
		Where("lesson_id = ?", lessonID).
		Select("COALESCE(MAX(order_index), -1)").
		Scan(&maxIndex).Error
	return maxIndex, err
}

func (r *CurriculumRepository) AddLessonSentence(ctx context.Context, link *model.LessonSentence) error {
	return r.DB.WithContext(ctx).Create(link).Error
}

func (r *CurriculumRepository) ListLessonSentenceLinks(ctx context.Context, lessonID uint) ([]model.LessonSentence, error) {
	var links []model.LessonSentence
	err := r.DB.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("order_index ASC").
		Find(&links).Error
	return links, err
}

// ListLessonSentences joins a lesson's links with their sentences, ordered by index.
func (r *CurriculumRepository) ListLessonSentences(ctx context.Context, lessonID uint) ([]model.OrderedSentence, error) {
	links, err := r.ListLessonSentenceLinks(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []model.OrderedSentence{}, nil
	}

	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.SentenceID)
	}

	var sentences []model.LearningSentence
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&sentences).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.LearningSentence, len(sentences))
	for _, s := range sentences {
		byID[s.ID] = s
	}

	result := make([]model.OrderedSentence, 0, len(links))
	for _, l := range links {
		s, ok := byID[l.SentenceID]
		if !ok {
			continue
		}
		result = append(result, model.OrderedSentence{LearningSentence: s, OrderIndex: l.OrderIndex})
	}
	return result, nil
}

// ReorderLessonSentences rewrites the order index of every link of a lesson in one transaction.
func (r *CurriculumRepository) ReorderLessonSentences(ctx context.Context, lessonID uint, sentenceIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, sentenceID := range sentenceIDs {
			res := tx.Model(&model.LessonSentence{}).
				Where("lesson_id = ? AND sentence_id = ?", lessonID, sentenceID).
				Update("order_index", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return util.NewNotFound("lesson sentence", sentenceID)
			}
		}
		return nil
	})
}

// RemoveLessonSentence detaches a sentence from a lesson. Remaining indices are left as they are.
func (r *CurriculumRepository) RemoveLessonSentence(ctx context.Context, lessonID, sentenceID uint) error {
	res := r.DB.WithContext(ctx).Unscoped().
		Where("lesson_id = ? AND sentence_id = ?", lessonID, sentenceID).
		Delete(&model.LessonSentence{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.NewNotFound("lesson sentence", sentenceID)
	}
	return nil
}
