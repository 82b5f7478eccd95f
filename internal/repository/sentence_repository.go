package repository

import (
	"context"
	"errors"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/util"

	"gorm.io/gorm"
)

type SentenceRepository struct {
	DB *gorm.DB
}

func NewSentenceRepository(db *gorm.DB) *SentenceRepository {
	return &SentenceRepository{DB: db}
}

func (r *SentenceRepository) Create(ctx context.Context, sentence *model.LearningSentence) error {
	return r.DB.WithContext(ctx).Create(sentence).Error
}

func (r *SentenceRepository) FindByID(ctx context.Context, id uint) (*model.LearningSentence, error) {
	var sentence model.LearningSentence
	err := r.DB.WithContext(ctx).First(&sentence, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFound("sentence", id)
	}
	if err != nil {
		return nil, err
	}
	return &sentence, nil
}

func (r *SentenceRepository) Update(ctx context.Context, sentence *model.LearningSentence) error {
	return r.DB.WithContext(ctx).Save(sentence).Error
}

// Delete removes a sentence together with every lesson link that points at it.
func (r *SentenceRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("sentence_id = ?", id).Delete(&model.LessonSentence{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.LearningSentence{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.NewNotFound("sentence", id)
		}
		return nil
	})
}
