package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger delivers outbound replies to a chat.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendSticker(chatID int64, fileID string) error
	SendDocument(chatID int64, path string) error
}

// Sender is the part of *tgbotapi.BotAPI used to send messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type telegramMessenger struct {
	api Sender
}

// NewTelegramMessenger sends replies through the Bot API.
func NewTelegramMessenger(api Sender) Messenger {
	return &telegramMessenger{api: api}
}

func (m *telegramMessenger) SendText(chatID int64, text string) error {
	if _, err := m.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (m *telegramMessenger) SendSticker(chatID int64, fileID string) error {
	if _, err := m.api.Send(tgbotapi.NewSticker(chatID, tgbotapi.FileID(fileID))); err != nil {
		return fmt.Errorf("send sticker %s: %w", fileID, err)
	}
	return nil
}

func (m *telegramMessenger) SendDocument(chatID int64, path string) error {
	if _, err := m.api.Send(tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))); err != nil {
		return fmt.Errorf("send document %s: %w", path, err)
	}
	return nil
}
