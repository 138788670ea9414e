// Package bot is the Telegram front-end: it receives utterances, runs them
// through the template grammar (with the LLM parser as fallback), hands the
// result to the dispatcher and replies with the outcome.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"courierbot/internal/dispatch"
	"courierbot/internal/enhance"
	"courierbot/internal/models"
	"courierbot/internal/parser"
	"courierbot/internal/scheduler"
	"courierbot/internal/storage"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	parser     *parser.Parser
	enhancer   enhance.Enhancer
	dispatcher *dispatch.Dispatcher
	sched      *scheduler.Service
	storage    storage.Storage
	logger     *zap.Logger
}

func New(
	token string,
	p *parser.Parser,
	enhancer enhance.Enhancer,
	dispatcher *dispatch.Dispatcher,
	sched *scheduler.Service,
	store storage.Storage,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:        api,
		parser:     p,
		enhancer:   enhancer,
		dispatcher: dispatcher,
		sched:      sched,
		storage:    store,
		logger:     logger,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	cmd, ok := b.parser.Interpret(text)
	if !ok {
		// The template grammar declined; let the model take a shot.
		var err error
		cmd, err = b.enhancer.ParseCommand(ctx, text)
		if err != nil {
			b.logger.Debug("utterance not understood",
				zap.String("text", text),
				zap.Error(err))
			b.sendMessage(message.Chat.ID,
				"I didn't understand that. Try something like:\n"+
					`"text John saying I'm running late"`+"\n"+
					`"email ana@example.com saying the report is ready"`+"\n"+
					`"remind me to call mom in 30 minutes"`)
			return
		}
	}

	response := b.dispatcher.Dispatch(ctx, cmd)

	if err := b.storage.SaveConversation(&models.ConversationLog{
		ID:        uuid.New().String(),
		UserID:    message.From.ID,
		Utterance: text,
		Action:    string(cmd.Action),
		Response:  response,
	}); err != nil {
		b.logger.Error("Failed to save conversation",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
	}

	b.sendMessage(message.Chat.ID, response)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "reminders":
		b.handleReminders(message)
	case "cancel":
		b.handleCancel(message)
	case "history":
		b.handleHistory(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to CourierBot! 📨
I turn plain requests into texts, emails and reminders.

Just tell me what to do:
"text John saying the meeting moved"
"email ana@example.com saying the report is ready"
"remind me to call mom in 30 minutes"

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/reminders - List pending reminders
/cancel <id> - Cancel a pending reminder
/history - Show your recent requests

You can ask me to:
- Text someone: "text John saying I'm on my way"
- Email someone: "email ana@example.com with subject update saying all done"
- Message several people: "text John and Mary saying dinner at 8"
- Schedule reminders: "remind me to stretch in an hour"

Voice-transcribed punctuation ("period", "comma") is cleaned up automatically.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleReminders(message *tgbotapi.Message) {
	pending := b.sched.Pending()
	if len(pending) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any pending reminders.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Pending reminders:\n")
	for _, e := range pending {
		fmt.Fprintf(&sb, "\n⏰ %s\n%s\nID: %s\n",
			e.RunAt.Format("Monday, January 2 at 3:04 PM"), e.Name, e.ID)
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleCancel(message *tgbotapi.Message) {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		b.sendMessage(message.Chat.ID, "Usage: /cancel <reminder id>")
		return
	}
	if !b.sched.Cancel(id) {
		b.sendMessage(message.Chat.ID, "No pending reminder with that ID. It may have already fired.")
		return
	}
	if err := b.storage.UpdateReminderStatus(id, scheduler.StatusCancelled, ""); err != nil {
		b.logger.Warn("failed to mark reminder cancelled",
			zap.String("id", id),
			zap.Error(err))
	}
	b.sendMessage(message.Chat.ID, "Reminder cancelled. ✅")
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	logs, err := b.storage.RecentConversations(message.From.ID, 5)
	if err != nil {
		b.logger.Error("Failed to get conversation history",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your history.")
		return
	}

	if len(logs) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any requests yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your recent requests:\n")
	for _, entry := range logs {
		fmt.Fprintf(&sb, "\n🗣 %s\n→ %s\n", entry.Utterance, entry.Action)
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
