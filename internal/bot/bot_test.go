package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, r.err
}

func message(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 42}, Text: text}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return msg
}

func TestHandle(t *testing.T) {
	tests := []struct {
		text      string
		want      string
		hasButton bool
		isReply   bool
	}{
		{"/start", welcomeText, true, false},
		{"/help", helpText, false, false},
		{"/unknown", unknownText, false, true},
		{"hello", unknownText, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rec := &recorder{}
			b := NewWithSender(rec, "https://app.example.com")

			b.Handle(message(tt.text))

			require.Len(t, rec.sent, 1)
			got := rec.sent[0]
			assert.Equal(t, int64(42), got.ChatID)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.hasButton, got.ReplyMarkup != nil)
			assert.Equal(t, tt.isReply, got.ReplyToMessageID == 7)
		})
	}
}

func TestStartButton(t *testing.T) {
	rec := &recorder{}
	NewWithSender(rec, "https://app.example.com").Handle(message("/start"))

	markup, ok := rec.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	button := markup.InlineKeyboard[0][0]
	assert.Equal(t, buttonText, button.Text)
	require.NotNil(t, button.URL)
	assert.Equal(t, "https://app.example.com", *button.URL)
}

func TestSendReminder(t *testing.T) {
	rec := &recorder{}
	b := NewWithSender(rec, "")

	require.NoError(t, b.SendReminder(context.Background(), 5, "hi"))
	assert.Equal(t, int64(5), rec.sent[0].ChatID)
	assert.Nil(t, rec.sent[0].ReplyMarkup)

	rec.err = errors.New("blocked")
	assert.Error(t, b.SendReminder(context.Background(), 5, "hi"))
}
