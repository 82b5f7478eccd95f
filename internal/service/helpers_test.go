package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps every statement on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type recordedEvent struct {
	Level   string
	Source  string
	Message string
	Details map[string]interface{}
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeRecorder) Record(_ context.Context, level, source, message string, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Level: level, Source: source, Message: message, Details: details})
}

func (f *fakeRecorder) count(level string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (f *fakeRecorder) fromSource(source string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, e := range f.events {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

type generateCall struct {
	System string
	User   string
}

// fakeContentGenerator answers GenerateJSON from a queue, falling back to reply.
type fakeContentGenerator struct {
	mu      sync.Mutex
	queue   []string
	reply   func(call int) (string, error)
	calls   []generateCall
	failAt  int
	failErr error
}

func (f *fakeContentGenerator) GenerateJSON(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{System: system, User: user})
	n := len(f.calls)
	if f.failAt > 0 && n == f.failAt {
		if f.failErr != nil {
			return "", f.failErr
		}
		return "", errors.New("model unavailable")
	}
	if len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		return next, nil
	}
	if f.reply != nil {
		return f.reply(n)
	}
	return sentenceJSON(n), nil
}

func (f *fakeContentGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func sentenceJSON(n int) string {
	return fmt.Sprintf(`{
		"spanish": "Si tengo tiempo, voy a caminar al parque %d.",
		"english": "If I have time, I am going to walk to park %d.",
		"wordByWord": [
			{"spanishWord": "Si", "englishWord": "yes", "partOfSpeech": "adverb"},
			{"spanishWord": "tengo", "englishWord": "I have", "partOfSpeech": "verb"},
			{"spanishWord": "tiempo", "englishWord": "weather", "partOfSpeech": "noun"},
			{"spanishWord": "caminar", "englishWord": "to walk", "partOfSpeech": "noun"},
			{"spanishWord": "al", "englishWord": "to the", "partOfSpeech": "contraction"},
			{"spanishWord": "parque", "englishWord": "park", "partOfSpeech": "noun", "examples": [{"spanish": "El parque es grande.", "english": "The park is big."}]}
		]
	}`, n, n)
}

type curriculumFixture struct {
	db         *gorm.DB
	curriculum *repository.CurriculumRepository
	sentences  *repository.SentenceRepository
	events     *fakeRecorder
	ai         *fakeContentGenerator
	generator  *SentenceGenerator
	populator  *LessonPopulator
}

func newCurriculumFixture(t *testing.T) *curriculumFixture {
	t.Helper()
	db := newTestDB(t)
	f := &curriculumFixture{
		db:         db,
		curriculum: repository.NewCurriculumRepository(db),
		sentences:  repository.NewSentenceRepository(db),
		events:     &fakeRecorder{},
		ai:         &fakeContentGenerator{},
	}
	f.generator = NewSentenceGenerator(f.ai, nil, f.events)
	f.populator = NewLessonPopulator(f.curriculum, f.sentences, f.generator, nil, f.events, 20)
	return f
}

// addLesson inserts a track at level with a single lesson and returns the lesson.
func (f *curriculumFixture) addLesson(t *testing.T, code, level string) *model.Lesson {
	t.Helper()
	ctx := context.Background()
	track := &model.CurriculumTrack{Code: code, Title: code, Level: level}
	if err := f.curriculum.CreateTrack(ctx, track); err != nil {
		t.Fatalf("create track: %v", err)
	}
	lesson := &model.Lesson{
		TrackID:         track.ID,
		LessonNumber:    1,
		Title:           "Lesson 1: Food",
		GrammarFocus:    "Present tense",
		VocabularyFocus: "Food",
	}
	if err := f.curriculum.CreateLesson(ctx, lesson); err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return lesson
}
