package provider

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/sticker-bot/internal/models"
	"go.uber.org/zap"
)

// ErrEmptyPath is returned when Telegram resolves a file but gives no download path.
var ErrEmptyPath = errors.New("telegram returned an empty file path")

// API is the subset of *tgbotapi.BotAPI the provider relies on.
type API interface {
	GetStickerSet(config tgbotapi.GetStickerSetConfig) (tgbotapi.StickerSet, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Telegram resolves sticker sets and files through the Bot API.
type Telegram struct {
	api    API
	logger *zap.Logger
}

func NewTelegram(api API, logger *zap.Logger) *Telegram {
	return &Telegram{
		api:    api,
		logger: logger,
	}
}

// ResolveCollection returns the stickers of the named set in their set order.
func (t *Telegram) ResolveCollection(ctx context.Context, name string) ([]models.ItemDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := t.api.GetStickerSet(tgbotapi.GetStickerSetConfig{Name: name})
	if err != nil {
		return nil, fmt.Errorf("get sticker set %q: %w", name, err)
	}

	items := make([]models.ItemDescriptor, 0, len(set.Stickers))
	for _, s := range set.Stickers {
		setName := s.SetName
		if setName == "" {
			setName = set.Name
		}
		items = append(items, models.ItemDescriptor{
			FileID:     s.FileID,
			UniqueID:   s.FileUniqueID,
			IsAnimated: s.IsAnimated,
			SetName:    setName,
			Emoji:      s.Emoji,
		})
	}

	t.logger.Debug("Resolved sticker set",
		zap.String("set_name", name),
		zap.Int("stickers", len(items)))
	return items, nil
}

// ResolveFile returns the server-side path Telegram assigned to the file.
func (t *Telegram) ResolveFile(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", fileID, err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("get file %s: %w", fileID, ErrEmptyPath)
	}
	return file.FilePath, nil
}
