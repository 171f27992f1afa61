// Package bot runs the Telegram bot that opens the mini app and sends reminders.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	welcomeText = "Добро пожаловать! Нажмите на кнопку ниже, чтобы открыть мини-приложение."
	helpText    = "Это бот с мини-приложением. Используйте команду /start, чтобы открыть приложение."
	unknownText = "Я не понимаю эту команду. Используйте /start, чтобы открыть мини-приложение или /help для получения помощи."
	buttonText  = "Открыть мини-приложение"
)

// Sender is the part of the Bot API the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	sender    Sender
	webAppURL string
}

// New connects to the Bot API with token.
func New(token, webAppURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	slog.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Bot{api: api, sender: api, webAppURL: webAppURL}, nil
}

// NewWithSender creates a bot that only sends messages. Run is not available.
func NewWithSender(sender Sender, webAppURL string) *Bot {
	return &Bot{sender: sender, webAppURL: webAppURL}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.Handle(update.Message)
		}
	}
}

// Handle answers a single incoming message.
func (b *Bot) Handle(msg *tgbotapi.Message) {
	_, err := b.sender.Send(b.reply(msg))
	if err != nil {
		slog.Error("failed to send reply", "error", err, "chat_id", msg.Chat.ID)
	}
}

func (b *Bot) reply(msg *tgbotapi.Message) tgbotapi.MessageConfig {
	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText)
		if b.webAppURL != "" {
			reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(buttonText, b.webAppURL)),
			)
		}
		return reply
	case "help":
		return tgbotapi.NewMessage(msg.Chat.ID, helpText)
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, unknownText)
		reply.ReplyToMessageID = msg.MessageID
		return reply
	}
}

// SendReminder sends text to a private chat. For private chats the chat ID
// equals the user's Telegram ID.
func (b *Bot) SendReminder(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if b.webAppURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(buttonText, b.webAppURL)),
		)
	}

	_, err := b.sender.Send(msg)
	return err
}
