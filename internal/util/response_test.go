package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandleErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("progress", "must be between 0 and 100"), http.StatusBadRequest},
		{"not found", NewNotFound("lesson", 3), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("populate: %w", NewNotFound("track", 1)), http.StatusNotFound},
		{"busy", ErrLessonBusy, http.StatusConflict},
		{"generation", &GenerationError{Reason: "empty response"}, http.StatusBadGateway},
		{"store", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleError(c, tc.err)

		if w.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}

func TestGenerationErrorUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := &GenerationError{Params: map[string]string{"topic": "food"}, Reason: "model call failed", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("GenerationError must unwrap to its cause")
	}
	if err.Error() != "generation failed: model call failed: timeout" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("id", "42"); err != nil || id != 42 {
		t.Fatalf("ParseID(42) = %d, %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "abc", "99999999999"} {
		if _, err := ParseID("id", s); err == nil {
			t.Errorf("ParseID(%q) should fail", s)
		}
	}
}
