package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spanish_learning_backend/internal/config"
	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"
	"spanish_learning_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type fakeAI struct {
	jsonErr error
}

func (f fakeAI) GenerateJSON(_ context.Context, _, user string) (string, error) {
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	return `{"spanish":"Me gusta comer pan.","english":"I like to eat bread.","wordByWord":[
		{"spanishWord":"Me","englishWord":"me","partOfSpeech":"pronoun"},
		{"spanishWord":"gusta","englishWord":"pleases","partOfSpeech":"verb"},
		{"spanishWord":"comer","englishWord":"to eat","partOfSpeech":"noun"},
		{"spanishWord":"pan","englishWord":"bread","partOfSpeech":"noun"}]}`, nil
}

func (fakeAI) Chat(context.Context, []service.AIChatMessage) (string, error) { return "hola", nil }

func (fakeAI) ChatStream(context.Context, []service.AIChatMessage) (<-chan string, <-chan error) {
	out := make(chan string, 2)
	errs := make(chan error)
	out <- "ho"
	out <- "la"
	close(out)
	close(errs)
	return out, errs
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	return newTestAppWithAI(t, fakeAI{})
}

func newTestAppWithAI(t *testing.T, ai aiClient) *App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server:     config.ServerConfig{Port: "0", Mode: "test"},
		JWT:        config.JWTConfig{Secret: testSecret},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Curriculum: config.CurriculumConfig{SentencesPerLesson: 2, MaxSentencesPerCall: 10},
	}
	app := newApp(cfg, db, nil, ai)
	if _, err := app.SeedCurriculum(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return app
}

func token(t *testing.T, userID uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + tok
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *App, method, path, auth string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestCurriculumEndToEnd(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app, http.MethodGet, "/api/curriculum/tracks", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tracks: %d %s", w.Code, w.Body.String())
	}
	var tracks []model.CurriculumTrack
	decodeData(t, env, &tracks)
	if len(tracks) != 6 || tracks[0].Code != "basic" {
		t.Fatalf("tracks = %+v", tracks)
	}

	_, env = do(t, app, http.MethodGet, fmt.Sprintf("/api/curriculum/tracks/%d/lessons", tracks[0].ID), "", nil)
	var lessons []model.Lesson
	decodeData(t, env, &lessons)
	if len(lessons) != 37 {
		t.Fatalf("lessons = %d", len(lessons))
	}
	lessonPath := fmt.Sprintf("/api/admin/lessons/%d/populate", lessons[0].ID)

	w, _ = do(t, app, http.MethodPost, lessonPath, "", map[string]int{"count": 2})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous populate: %d", w.Code)
	}
	w, _ = do(t, app, http.MethodPost, lessonPath, token(t, 1, model.Learner), map[string]int{"count": 2})
	if w.Code != http.StatusForbidden {
		t.Fatalf("learner populate: %d", w.Code)
	}

	w, env = do(t, app, http.MethodPost, lessonPath, token(t, 2, model.Admin), map[string]int{"count": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("admin populate: %d %s", w.Code, w.Body.String())
	}
	var populated struct{ Generated int }
	decodeData(t, env, &populated)
	if populated.Generated != 2 {
		t.Fatalf("generated = %d", populated.Generated)
	}

	_, env = do(t, app, http.MethodGet, fmt.Sprintf("/api/curriculum/lessons/%d/sentences", lessons[0].ID), "", nil)
	var sentences []model.OrderedSentence
	decodeData(t, env, &sentences)
	if len(sentences) != 2 || sentences[0].OrderIndex != 0 || sentences[1].OrderIndex != 1 {
		t.Fatalf("sentences = %+v", sentences)
	}
	if sentences[0].WordByWord[2].PartOfSpeech != model.PosVerbInfinitive {
		t.Errorf("comer = %+v", sentences[0].WordByWord[2])
	}
}

func TestPopulateUsesConfiguredDefaultCount(t *testing.T) {
	app := newTestApp(t)
	path := "/api/admin/lessons/1/populate"

	w, env := do(t, app, http.MethodPost, path, token(t, 2, model.Admin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("populate: %d %s", w.Code, w.Body.String())
	}
	var populated struct{ Generated int }
	decodeData(t, env, &populated)
	if populated.Generated != 2 {
		t.Fatalf("generated = %d, want the configured 2", populated.Generated)
	}
}

func TestErrorStatuses(t *testing.T) {
	app := newTestApp(t)
	admin := token(t, 2, model.Admin)

	cases := []struct {
		name, method, path string
		body               interface{}
		want               int
	}{
		{"unknown lesson", http.MethodGet, "/api/curriculum/lessons/9999", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/curriculum/lessons/abc", nil, http.StatusBadRequest},
		{"unknown track", http.MethodGet, "/api/curriculum/tracks/9999/lessons", nil, http.StatusNotFound},
		{"populate unknown lesson", http.MethodPost, "/api/admin/lessons/9999/populate", map[string]int{"count": 1}, http.StatusNotFound},
		{"populate too many", http.MethodPost, "/api/admin/lessons/1/populate", map[string]int{"count": 50}, http.StatusBadRequest},
		{"unknown sentence", http.MethodGet, "/api/sentences/9999", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		w, _ := do(t, app, tc.method, tc.path, admin, tc.body)
		if w.Code != tc.want {
			t.Errorf("%s: status %d, want %d (%s)", tc.name, w.Code, tc.want, w.Body.String())
		}
	}
}

func TestProgressRoutes(t *testing.T) {
	app := newTestApp(t)
	learner := token(t, 9, model.Learner)

	w, _ := do(t, app, http.MethodPut, "/api/progress/lessons/1", "", map[string]int{"progress": 50})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous progress: %d", w.Code)
	}

	w, _ = do(t, app, http.MethodPut, "/api/progress/lessons/1", learner, map[string]int{"progress": 150})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out of range progress: %d", w.Code)
	}

	w, env := do(t, app, http.MethodPut, "/api/progress/lessons/1", learner, map[string]interface{}{"progress": 100, "completed": false})
	if w.Code != http.StatusOK {
		t.Fatalf("progress: %d %s", w.Code, w.Body.String())
	}
	var row model.UserLessonProgress
	decodeData(t, env, &row)
	if !row.Completed {
		t.Fatal("progress 100 must complete the lesson")
	}

	_, env = do(t, app, http.MethodGet, "/api/progress", learner, nil)
	var summary service.ProgressSummary
	decodeData(t, env, &summary)
	if summary.Overall == nil || summary.Overall.LessonsCompleted != 1 || len(summary.Lessons) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestPublicGenerationRoutes(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app, http.MethodPost, "/api/sentences/generate", "", map[string]string{"topic": "food"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	var sentence model.LearningSentence
	decodeData(t, env, &sentence)
	if sentence.ID != 0 || sentence.Topic != "food" {
		t.Errorf("sentence = %+v", sentence)
	}
	if sentence.WordByWord[2].PartOfSpeech != "noun" {
		t.Errorf("ad-hoc generation must not tag infinitives: %+v", sentence.WordByWord[2])
	}

	w, env = do(t, app, http.MethodGet, "/api/lexicon", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"prepositions"`) {
		t.Fatalf("lexicon: %d %s", w.Code, w.Body.String())
	}
}

func TestConversationStream(t *testing.T) {
	app := newTestApp(t)

	raw, _ := json.Marshal(map[string]string{"message": "Hola"})
	req := httptest.NewRequest(http.MethodPost, "/api/conversation/stream", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "event:message\ndata:ho") || !strings.Contains(body, "event:end") {
		t.Fatalf("stream body = %q", body)
	}
}

func TestGenerationFailureRecordsSystemEvent(t *testing.T) {
	app := newTestAppWithAI(t, fakeAI{jsonErr: errors.New("upstream unavailable")})

	var before, after int64
	app.DB.Model(&model.SystemEvent{}).Where("source = ?", "sentence_generator").Count(&before)

	w, _ := do(t, app, http.MethodPost, "/api/sentences/generate", "", map[string]string{"topic": "food"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}

	app.DB.Model(&model.SystemEvent{}).Where("source = ?", "sentence_generator").Count(&after)
	if after != before+1 {
		t.Fatalf("system events from the generator: before=%d after=%d", before, after)
	}
}
