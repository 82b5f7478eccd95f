package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"spanish_learning_backend/internal/config"
)

// ContentGenerator is the structured-output capability the sentence pipeline
// depends on: a system and a user prompt in, one JSON document out.
type ContentGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChatCompleter powers the free-form conversation features.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []AIChatMessage) (string, error)
	ChatStream(ctx context.Context, messages []AIChatMessage) (<-chan string, <-chan error)
}

// AIService talks to an OpenAI-compatible chat completions endpoint.
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

// NewAIServiceWithClient lets callers supply the transport, e.g. in tests.
func NewAIServiceWithClient(cfg config.AIConfig, client *http.Client) *AIService {
	return &AIService{config: cfg, client: client}
}

// UpdateConfig swaps endpoint, key, model and timeout for subsequent calls.
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: cfg.Timeout(), Transport: s.client.Transport}
}

func (s *AIService) snapshot() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) newRequest(ctx context.Context, cfg config.AIConfig, body ChatCompletionRequest) (*http.Request, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	return req, nil
}

func (s *AIService) complete(ctx context.Context, body ChatCompletionRequest) (string, error) {
	cfg, client := s.snapshot()
	body.Model = cfg.Model

	req, err := s.newRequest(ctx, cfg, body)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// GenerateJSON asks the model for a JSON object and returns its raw text.
func (s *AIService) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.complete(ctx, ChatCompletionRequest{
		Messages: []AIChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
}

func (s *AIService) Chat(ctx context.Context, messages []AIChatMessage) (string, error) {
	return s.complete(ctx, ChatCompletionRequest{Messages: messages})
}

// ChatStream relays content deltas from a server-sent event stream. Both
// channels are closed when the stream ends or ctx is cancelled.
func (s *AIService) ChatStream(ctx context.Context, messages []AIChatMessage) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	cfg, client := s.snapshot()
	body := ChatCompletionRequest{Model: cfg.Model, Messages: messages, Stream: true}

	go func() {
		defer close(out)
		defer close(errChan)

		req, err := s.newRequest(ctx, cfg, body)
		if err != nil {
			errChan <- err
			return
		}

		// Streams may outlive the request timeout; ctx bounds them instead.
		streamClient := &http.Client{Transport: client.Transport}
		resp, err := streamClient.Do(req)
		if err != nil {
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			errChan <- fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(raw))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				return
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var chunk ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}

			select {
			case out <- chunk.Choices[0].Delta.Content:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return out, errChan
}
