package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"spanish_learning_backend/internal/config"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{BaseURL: "https://llm.test/v1/", APIKey: "secret", Model: "test-model", TimeoutSeconds: 5}
}

func TestGenerateJSONRequestsJSONObject(t *testing.T) {
	var captured ChatCompletionRequest
	var auth, url string
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		url = req.URL.String()
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`), nil
	})}
	svc := NewAIServiceWithClient(testAIConfig(), client)

	out, err := svc.GenerateJSON(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("content = %q", out)
	}
	if url != "https://llm.test/v1/chat/completions" {
		t.Errorf("url = %q", url)
	}
	if auth != "Bearer secret" {
		t.Errorf("authorization = %q", auth)
	}
	if captured.Model != "test-model" || captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("request = %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "usr" {
		t.Errorf("messages = %+v", captured.Messages)
	}
}

func TestGenerateJSONErrors(t *testing.T) {
	cases := map[string]*http.Response{
		"status":     jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`),
		"no choices": jsonResponse(http.StatusOK, `{"choices":[]}`),
		"api error":  jsonResponse(http.StatusOK, `{"choices":[],"error":{"message":"bad key"}}`),
		"bad body":   jsonResponse(http.StatusOK, `<html>`),
	}
	for name, resp := range cases {
		resp := resp
		client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) { return resp, nil })}
		svc := NewAIServiceWithClient(testAIConfig(), client)

		if _, err := svc.GenerateJSON(context.Background(), "s", "u"); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestUpdateConfigSwitchesModel(t *testing.T) {
	var model string
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var body ChatCompletionRequest
		json.NewDecoder(req.Body).Decode(&body)
		model = body.Model
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"hola"}}]}`), nil
	})}
	svc := NewAIServiceWithClient(testAIConfig(), client)

	cfg := testAIConfig()
	cfg.Model = "other-model"
	svc.UpdateConfig(cfg)

	if _, err := svc.Chat(context.Background(), []AIChatMessage{{Role: "user", Content: "hola"}}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if model != "other-model" {
		t.Fatalf("model = %q, want other-model", model)
	}
}

func TestChatStreamRelaysDeltas(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"¡Ho"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"la!"}}]}`,
		`: keep-alive`,
		`data: {"choices":[{"delta":{}}]}`,
		`data: [DONE]`,
		`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
		``,
	}, "\n")
	var streamed bool
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var body ChatCompletionRequest
		json.NewDecoder(req.Body).Decode(&body)
		streamed = body.Stream
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(stream))}, nil
	})}
	svc := NewAIServiceWithClient(testAIConfig(), client)

	out, errs := svc.ChatStream(context.Background(), []AIChatMessage{{Role: "user", Content: "hola"}})

	var got strings.Builder
	for chunk := range out {
		got.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got.String() != "¡Hola!" {
		t.Errorf("stream = %q", got.String())
	}
	if !streamed {
		t.Error("request must ask for a stream")
	}
}

func TestChatStreamReportsStatus(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`), nil
	})}
	svc := NewAIServiceWithClient(testAIConfig(), client)

	out, errs := svc.ChatStream(context.Background(), nil)
	for range out {
	}
	if err := <-errs; err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}
