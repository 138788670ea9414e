// Package enhance wraps the LLM used for message polish, subject line
// generation and free-form command parsing. Every operation degrades
// gracefully: on any API or parse failure the caller gets the original text
// (or a stock subject), never an error it must handle inline.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"courierbot/internal/models"
)

const defaultSubject = "Message from your assistant"

// Enhancer is the LLM surface the dispatcher and bot depend on.
type Enhancer interface {
	// Enhance rewrites message for clarity and grammar, preserving meaning.
	// Returns message unchanged on failure.
	Enhance(ctx context.Context, message string) string
	// SuggestSubject produces a short email subject for message, or a stock
	// subject on failure.
	SuggestSubject(ctx context.Context, message string) string
	// ParseCommand asks the model to interpret an utterance the template
	// grammar declined. Returns an error when the model cannot produce a
	// usable command.
	ParseCommand(ctx context.Context, text string) (*models.Command, error)
}

type OpenAIEnhancer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func NewOpenAIEnhancer(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIEnhancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIEnhancer{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		logger:      logger,
	}
}

func (e *OpenAIEnhancer) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: e.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   e.maxTokens,
			Temperature: e.temperature,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (e *OpenAIEnhancer) Enhance(ctx context.Context, message string) string {
	prompt := fmt.Sprintf(`You are a professional communication assistant. Enhance this message to be clear, professional, and grammatically correct while preserving the original meaning:

Original message: %q

Respond with ONLY the enhanced message, nothing else.`, message)

	out, err := e.complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("message enhancement failed", zap.Error(err))
		return message
	}
	if out == "" {
		return message
	}
	return out
}

func (e *OpenAIEnhancer) SuggestSubject(ctx context.Context, message string) string {
	prompt := fmt.Sprintf(`Generate a professional, concise email subject line for this message content. The subject should be clear, specific, and under 50 characters.

Message content: %q

Respond with ONLY the subject line, nothing else.`, message)

	out, err := e.complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("subject generation failed", zap.Error(err))
		return defaultSubject
	}
	if out == "" {
		return defaultSubject
	}
	return strings.Trim(out, `"`)
}

// parsedCommand mirrors the JSON shape the model is instructed to produce.
// Times arrive as RFC 3339-ish strings and are converted here.
type parsedCommand struct {
	Action       string   `json:"action"`
	Title        string   `json:"title"`
	DueDate      string   `json:"due_date"`
	ReminderTime string   `json:"reminder_time"`
	Recipient    string   `json:"recipient"`
	Recipients   []string `json:"recipients"`
	Message      string   `json:"message"`
	Subject      string   `json:"subject"`
	Notes        string   `json:"notes"`
	Error        string   `json:"error"`
}

func (e *OpenAIEnhancer) ParseCommand(ctx context.Context, text string) (*models.Command, error) {
	prompt := fmt.Sprintf(`You are an intelligent assistant. Respond ONLY with valid JSON using one of the supported actions.

Supported actions:
- create_task, create_appointment, send_message, send_message_multi
- send_email, send_email_multi, schedule_sms_reminder, schedule_email_reminder
- log_conversation

Response structure:
{
  "action": "action_name",
  "title": "...",
  "due_date": "YYYY-MM-DDTHH:MM:SS",
  "reminder_time": "YYYY-MM-DDTHH:MM:SS",
  "recipient": "Name, phone number, or email",
  "recipients": ["Name1", "Name2"],
  "message": "Body of the message",
  "subject": "Email subject",
  "notes": "Optional details"
}

Only include fields relevant to the action. Do not add extra commentary.

User: %s`, text)

	out, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}

	var parsed parsedCommand
	if err := json.Unmarshal([]byte(stripFences(out)), &parsed); err != nil {
		e.logger.Warn("model response is not valid JSON",
			zap.Error(err),
			zap.String("response", out))
		return nil, fmt.Errorf("parse command response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("parse command: %s", parsed.Error)
	}
	if parsed.Action == "" {
		return nil, fmt.Errorf("parse command: response has no action")
	}

	cmd := &models.Command{
		Action:          models.Action(parsed.Action),
		Title:           parsed.Title,
		DueDate:         parsed.DueDate,
		Recipient:       parsed.Recipient,
		Recipients:      parsed.Recipients,
		Message:         parsed.Message,
		OriginalMessage: parsed.Message,
		Subject:         parsed.Subject,
		Notes:           parsed.Notes,
		OriginalText:    text,
	}
	if parsed.ReminderTime != "" {
		when, err := parseModelTime(parsed.ReminderTime)
		if err != nil {
			return nil, fmt.Errorf("parse reminder time %q: %w", parsed.ReminderTime, err)
		}
		cmd.ReminderTime = when
		cmd.TimeStr = parsed.ReminderTime
	}
	return cmd, nil
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func parseModelTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time layout")
}
