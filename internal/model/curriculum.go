package model

// CEFR levels used by curriculum tracks. LevelQ is the non-standard "wisdom" tier.
const (
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelC1 = "C1"
	LevelQ  = "Q"
)

// swagger:model CurriculumTrack
type CurriculumTrack struct {
	BaseModel
	Code         string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Level        string `gorm:"size:5;not null" json:"level"`
	TotalLessons int    `gorm:"default:0" json:"totalLessons"`
	Icon         string `gorm:"size:50" json:"icon"`
}

func (CurriculumTrack) TableName() string {
	return "curriculum_tracks"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	TrackID         uint   `gorm:"not null;uniqueIndex:idx_lessons_track_number" json:"trackId"`
	LessonNumber    int    `gorm:"not null;uniqueIndex:idx_lessons_track_number" json:"lessonNumber"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	GrammarFocus    string `gorm:"size:255" json:"grammarFocus"`
	VocabularyFocus string `gorm:"size:255" json:"vocabularyFocus"`

	Track *CurriculumTrack `gorm:"foreignKey:TrackID" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// LessonSentence places a sentence at an explicit position inside a lesson.
// swagger:model LessonSentence
type LessonSentence struct {
	BaseModel
	LessonID   uint `gorm:"not null;index" json:"lessonId"`
	SentenceID uint `gorm:"not null;index" json:"sentenceId"`
	OrderIndex int  `gorm:"not null;default:0" json:"orderIndex"`
}

func (LessonSentence) TableName() string {
	return "lesson_sentences"
}
