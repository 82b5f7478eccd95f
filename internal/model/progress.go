package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model UserLessonProgress
type UserLessonProgress struct {
	BaseModel
	UserID         uint      `gorm:"not null;uniqueIndex:idx_user_lesson_progress" json:"userId"`
	LessonID       uint      `gorm:"not null;uniqueIndex:idx_user_lesson_progress" json:"lessonId"`
	Completed      bool      `gorm:"default:false" json:"completed"`
	Progress       int       `gorm:"default:0" json:"progress"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

func (UserLessonProgress) TableName() string {
	return "user_lesson_progress"
}

// UserProgress is the per-user aggregate shown on the dashboard.
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID           uint                        `gorm:"not null;uniqueIndex" json:"userId"`
	WordsLearned     int                         `gorm:"default:0" json:"wordsLearned"`
	LessonsCompleted int                         `gorm:"default:0" json:"lessonsCompleted"`
	AverageScore     float64                     `gorm:"default:0" json:"averageScore"`
	Strengths        datatypes.JSONSlice[string] `json:"strengths"`
	Weaknesses       datatypes.JSONSlice[string] `json:"weaknesses"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// ExerciseAttempt is one graded answer; the average score is recomputed from all of them.
// swagger:model ExerciseAttempt
type ExerciseAttempt struct {
	BaseModel
	UserID     uint   `gorm:"not null;index" json:"userId"`
	SentenceID uint   `gorm:"not null;index" json:"sentenceId"`
	Correct    bool   `gorm:"default:false" json:"correct"`
	UserAnswer string `gorm:"type:text" json:"userAnswer"`
}

func (ExerciseAttempt) TableName() string {
	return "exercise_attempts"
}
