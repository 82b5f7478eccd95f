package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/internal/util"
)

type progressFixture struct {
	*curriculumFixture
	repo    *repository.ProgressRepository
	tracker *ProgressTracker
	service *ProgressService
	lesson  *model.Lesson
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	cf := newCurriculumFixture(t)
	repo := repository.NewProgressRepository(cf.db)
	tracker := NewProgressTracker(repo)
	return &progressFixture{
		curriculumFixture: cf,
		repo:              repo,
		tracker:           tracker,
		service:           NewProgressService(repo, cf.curriculum, cf.sentences, tracker, cf.events),
		lesson:            cf.addLesson(t, "basic", model.LevelA1),
	}
}

func boolPtr(b bool) *bool { return &b }

func TestUpdateProgressFullProgressCompletes(t *testing.T) {
	f := newProgressFixture(t)

	row, err := f.tracker.UpdateProgress(context.Background(), 7, f.lesson.ID, 100, boolPtr(false))
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if !row.Completed {
		t.Fatal("progress 100 must complete the lesson even with completed=false")
	}
}

func TestUpdateProgressHonorsExplicitCompletion(t *testing.T) {
	f := newProgressFixture(t)

	row, err := f.tracker.UpdateProgress(context.Background(), 7, f.lesson.ID, 40, boolPtr(true))
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if !row.Completed || row.Progress != 40 {
		t.Fatalf("got completed=%v progress=%d", row.Completed, row.Progress)
	}
}

func TestUpdateProgressUpdatesInPlace(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	first, err := f.tracker.UpdateProgress(ctx, 7, f.lesson.ID, 30, nil)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	second, err := f.tracker.UpdateProgress(ctx, 7, f.lesson.ID, 60, nil)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same row, got %d and %d", first.ID, second.ID)
	}

	rows, _ := f.repo.ListLessonProgress(ctx, 7)
	if len(rows) != 1 || rows[0].Progress != 60 || rows[0].Completed {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].LastAccessedAt.IsZero() {
		t.Error("last accessed time must be set")
	}
}

func TestRecordLessonProgressValidatesRange(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	for _, p := range []int{-1, 101} {
		_, err := f.service.RecordLessonProgress(ctx, 7, f.lesson.ID, p, nil)
		var validation *util.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("progress %d: expected ValidationError, got %v", p, err)
		}
	}
	if rows, _ := f.repo.ListLessonProgress(ctx, 7); len(rows) != 0 {
		t.Fatal("invalid input must not write rows")
	}
}

func TestRecordLessonProgressRollsUpOnce(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	steps := []struct {
		progress  int
		completed *bool
	}{
		{50, nil},
		{100, nil},
		{100, boolPtr(true)},
		{80, boolPtr(true)},
	}
	for _, s := range steps {
		if _, err := f.service.RecordLessonProgress(ctx, 7, f.lesson.ID, s.progress, s.completed); err != nil {
			t.Fatalf("RecordLessonProgress(%d): %v", s.progress, err)
		}
	}

	summary, err := f.service.GetSummary(ctx, 7)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.Overall.LessonsCompleted != 1 {
		t.Fatalf("lessonsCompleted = %d, want 1", summary.Overall.LessonsCompleted)
	}
	if len(summary.Lessons) != 1 || summary.Lessons[0].Progress != 80 {
		t.Fatalf("unexpected lesson rows: %+v", summary.Lessons)
	}
}

func TestRecordLessonProgressUnknownLesson(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.service.RecordLessonProgress(context.Background(), 7, 999, 10, nil)

	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordExerciseAttemptRecomputesAverage(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()
	if _, err := f.populator.PopulateLesson(ctx, f.lesson.ID, 1, PopulateOverrides{}); err != nil {
		t.Fatalf("PopulateLesson: %v", err)
	}
	sentences, _ := f.curriculum.ListLessonSentences(ctx, f.lesson.ID)
	sentenceID := sentences[0].ID

	var progress *model.UserProgress
	var err error
	for _, correct := range []bool{true, false, true} {
		progress, err = f.service.RecordExerciseAttempt(ctx, 7, sentenceID, correct, "respuesta")
		if err != nil {
			t.Fatalf("RecordExerciseAttempt: %v", err)
		}
	}

	want := 200.0 / 3.0
	if math.Abs(progress.AverageScore-want) > 1e-9 {
		t.Fatalf("average = %v, want %v", progress.AverageScore, want)
	}
}

func TestRecordExerciseAttemptUnknownSentence(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.service.RecordExerciseAttempt(context.Background(), 7, 999, true, "")

	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddWordsLearned(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	if _, err := f.service.AddWordsLearned(ctx, 7, 5); err != nil {
		t.Fatalf("AddWordsLearned: %v", err)
	}
	progress, err := f.service.AddWordsLearned(ctx, 7, 3)
	if err != nil {
		t.Fatalf("AddWordsLearned: %v", err)
	}
	if progress.WordsLearned != 8 {
		t.Fatalf("wordsLearned = %d, want 8", progress.WordsLearned)
	}

	_, err = f.service.AddWordsLearned(ctx, 7, 0)
	var validation *util.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAverageScore(t *testing.T) {
	if AverageScore(0, 0) != 0 {
		t.Error("no attempts means a zero average")
	}
	if AverageScore(4, 3) != 75 {
		t.Errorf("AverageScore(4, 3) = %v", AverageScore(4, 3))
	}
}

func TestRecordExerciseAttemptDerivesTopicSkills(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	topics := map[string]uint{}
	for _, topic := range []string{"food", "travel", "family"} {
		s := &model.LearningSentence{SpanishText: "Hola " + topic, EnglishText: "Hello", Topic: topic}
		if err := f.sentences.Create(ctx, s); err != nil {
			t.Fatalf("create sentence: %v", err)
		}
		topics[topic] = s.ID
	}

	answers := []struct {
		topic   string
		correct []bool
	}{
		{"food", []bool{true, true, true}},
		{"travel", []bool{false, false, true}},
		{"family", []bool{true, false}},
	}
	var progress *model.UserProgress
	var err error
	for _, a := range answers {
		for _, correct := range a.correct {
			progress, err = f.service.RecordExerciseAttempt(ctx, 9, topics[a.topic], correct, "respuesta")
			if err != nil {
				t.Fatalf("RecordExerciseAttempt: %v", err)
			}
		}
	}

	if len(progress.Strengths) != 1 || progress.Strengths[0] != "food" {
		t.Errorf("strengths = %v", progress.Strengths)
	}
	if len(progress.Weaknesses) != 1 || progress.Weaknesses[0] != "travel" {
		t.Errorf("weaknesses = %v", progress.Weaknesses)
	}
}

func TestTopicSkills(t *testing.T) {
	stats := []repository.TopicStat{
		{Topic: "a", Total: 10, Correct: 9},
		{Topic: "b", Total: 10, Correct: 10},
		{Topic: "c", Total: 2, Correct: 0},
		{Topic: "d", Total: 4, Correct: 1},
		{Topic: "e", Total: 10, Correct: 6},
		{Topic: "f", Total: 5, Correct: 2},
	}

	strengths, weaknesses := TopicSkills(stats)

	if len(strengths) != 2 || strengths[0] != "b" || strengths[1] != "a" {
		t.Errorf("strengths = %v", strengths)
	}
	if len(weaknesses) != 2 || weaknesses[0] != "d" || weaknesses[1] != "f" {
		t.Errorf("weaknesses = %v", weaknesses)
	}

	strengths, weaknesses = TopicSkills(nil)
	if strengths == nil || weaknesses == nil {
		t.Error("empty results must be non-nil slices")
	}
}
