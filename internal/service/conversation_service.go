package service

import (
	"context"
	"fmt"
	"strings"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/util"
)

const maxHistoryTurns = 20

// ConversationRequest is one learner turn plus the earlier turns of the chat.
type ConversationRequest struct {
	Message   string          `json:"message" binding:"required"`
	CEFRLevel string          `json:"cefrLevel"`
	Topic     string          `json:"topic"`
	History   []AIChatMessage `json:"history"`
}

// ConversationFeedback is the tutor's structured reaction to a learner message.
type ConversationFeedback struct {
	Reply         string   `json:"reply"`
	ReplyEnglish  string   `json:"replyEnglish"`
	IsCorrect     bool     `json:"isCorrect"`
	CorrectedText string   `json:"correctedText"`
	Corrections   []string `json:"corrections"`
	Tip           string   `json:"tip"`
}

type ConversationService struct {
	generator ContentGenerator
	chat      ChatCompleter
	events    EventRecorder
}

func NewConversationService(generator ContentGenerator, chat ChatCompleter, events EventRecorder) *ConversationService {
	return &ConversationService{generator: generator, chat: chat, events: events}
}

func (s *ConversationService) systemPrompt(req ConversationRequest) string {
	level := req.CEFRLevel
	if level == "" {
		level = DefaultCEFRLevel
	}
	prompt := fmt.Sprintf("You are a friendly Spanish conversation partner for a learner at CEFR level %s. "+
		"Answer in Spanish using vocabulary and grammar suited to that level and keep replies short.", level)
	if req.Topic != "" {
		prompt += " The conversation is about " + req.Topic + "."
	}
	return prompt
}

func (s *ConversationService) messages(req ConversationRequest, system string) []AIChatMessage {
	history := req.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]AIChatMessage, 0, len(history)+2)
	messages = append(messages, AIChatMessage{Role: "system", Content: system})
	for _, h := range history {
		if h.Role != "user" && h.Role != "assistant" {
			continue
		}
		messages = append(messages, h)
	}
	messages = append(messages, AIChatMessage{Role: "user", Content: strings.TrimSpace(req.Message)})
	return messages
}

// Feedback replies to the learner and grades the Spanish of their message.
func (s *ConversationService) Feedback(ctx context.Context, req ConversationRequest) (*ConversationFeedback, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, util.NewValidation("message", "must not be empty")
	}

	system := s.systemPrompt(req) + "\nReply with a single JSON object with the keys " +
		`"reply" (your answer in Spanish), "replyEnglish" (its translation), "isCorrect" (whether the learner's last message was correct Spanish), ` +
		`"correctedText" (the learner's message corrected, or unchanged), "corrections" (array of short explanations in English) and "tip" (one short learning tip).`

	var transcript strings.Builder
	for _, m := range s.messages(req, "")[1:] {
		transcript.WriteString(m.Role)
		transcript.WriteString(": ")
		transcript.WriteString(m.Content)
		transcript.WriteString("\n")
	}

	raw, err := s.generator.GenerateJSON(ctx, system, transcript.String())
	if err != nil {
		return nil, s.fail(ctx, req, "model call failed", err)
	}

	var feedback ConversationFeedback
	if err := decodeModelJSON(raw, &feedback); err != nil {
		return nil, s.fail(ctx, req, "unparseable model output", err)
	}
	if strings.TrimSpace(feedback.Reply) == "" {
		return nil, s.fail(ctx, req, "model output is missing reply", nil)
	}
	if feedback.Corrections == nil {
		feedback.Corrections = []string{}
	}
	return &feedback, nil
}

// Stream relays the partner's reply as it is produced.
func (s *ConversationService) Stream(ctx context.Context, req ConversationRequest) (<-chan string, <-chan error, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, nil, util.NewValidation("message", "must not be empty")
	}
	out, errs := s.chat.ChatStream(ctx, s.messages(req, s.systemPrompt(req)))
	return out, errs, nil
}

func (s *ConversationService) fail(ctx context.Context, req ConversationRequest, reason string, cause error) error {
	params := map[string]string{"cefrLevel": req.CEFRLevel, "topic": req.Topic}
	details := map[string]interface{}{"reason": reason, "cefrLevel": req.CEFRLevel}
	if cause != nil {
		details["error"] = cause.Error()
	}
	s.events.Record(ctx, model.EventLevelWarn, "conversation_service", "Conversation feedback failed", details)
	return &util.GenerationError{Params: params, Reason: reason, Err: cause}
}
