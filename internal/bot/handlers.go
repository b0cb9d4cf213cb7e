package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/xaenox/sticker-bot/internal/picker"
	"github.com/xaenox/sticker-bot/internal/session"
	"go.uber.org/zap"
)

func (b *Bot) handleStart(message *tgbotapi.Message) {
	name := strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
	if name == "" {
		name = message.From.UserName
	}

	welcome := fmt.Sprintf(`Hello, %s!
Write me /index to start indexing stickers.
Use /random_sticker to get a random sticker from your collection.`, name)

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/index - Start indexing stickers
/stop_index - Finish indexing and download the sets
/random_sticker - Get a random sticker from your collection
/sets - Show your downloaded sticker sets

While indexing, send me one sticker from every set you want to keep.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleIndex(message *tgbotapi.Message) {
	b.sessions.Start(message.From.ID)

	b.logger.Info("Indexing started", zap.Int64("user_id", message.From.ID))
	b.sendMessage(message.Chat.ID,
		"Indexing mode started. Please send me stickers to index. Type /stop_index when you're done.")
}

func (b *Bot) handleSticker(message *tgbotapi.Message) {
	setName := message.Sticker.SetName

	switch b.sessions.Record(message.From.ID, setName) {
	case session.Recorded:
		b.sendMessage(message.Chat.ID,
			fmt.Sprintf("Sticker set '%s' has been indexed. Type /stop_index to finish indexing.", setName))
	case session.Rejected:
		b.sendMessage(message.Chat.ID, "This sticker doesn't belong to a set. Please send another one.")
	case session.Ignored:
		// stickers outside indexing mode are not session input
	}
}

func (b *Bot) handleStopIndex(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	names, active := b.sessions.Stop(userID)
	if !active {
		b.sendMessage(chatID, "You are not in indexing mode. Use /index to start indexing.")
		return
	}
	defer b.sessions.Finish(userID)

	if len(names) == 0 {
		b.sendMessage(chatID, "Indexing completed. No stickers were indexed.")
		return
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Indexing completed. I've indexed %d unique sticker sets:\n", len(names))
	for i, name := range names {
		fmt.Fprintf(&summary, "%d. %s\n", i+1, name)
	}
	b.sendMessage(chatID, summary.String())
	b.sendMessage(chatID, "Now downloading all stickers from indexed sets. This may take a while...")

	passID := uuid.New().String()
	logger := b.logger.With(
		zap.String("pass_id", passID),
		zap.Int64("user_id", userID))

	userRoot := b.userRoot(userID)
	if err := os.MkdirAll(userRoot, 0o755); err != nil {
		logger.Error("Failed to create user directory",
			zap.Error(err),
			zap.String("path", userRoot))
		b.sendMessage(chatID, "Sorry, I couldn't prepare storage for your stickers. Please try again later.")
		return
	}

	logger.Info("Download pass started", zap.Strings("sets", names))

	total, saved := 0, 0
	for _, name := range names {
		result := b.downloader.DownloadCollection(ctx, userID, name, userRoot)
		total += result.Enumerated
		saved += result.Saved
	}

	logger.Info("Download pass finished",
		zap.Int("enumerated", total),
		zap.Int("saved", saved),
		zap.Int("sets", len(names)))

	b.sendMessage(chatID,
		fmt.Sprintf("Downloaded %d stickers from %d sets to folder '%s'", total, len(names), b.userDir(userID)))
	b.sendMessage(chatID, "You can now use /random_sticker to get a random sticker from your collection.")
}

func (b *Bot) handleRandomSticker(message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	choice, err := b.picker.Pick(b.userRoot(userID))
	switch {
	case errors.Is(err, picker.ErrNoCollection):
		b.sendMessage(chatID, "You don't have any indexed stickers yet. Use /index to start collecting stickers.")
		return
	case errors.Is(err, picker.ErrEmptyCollection):
		b.sendMessage(chatID, "No stickers found in your collection. Try indexing some stickers first.")
		return
	case errors.Is(err, picker.ErrItemUnavailable):
		b.sendMessage(chatID, "Could not find the sticker file.")
		return
	case err != nil:
		b.logger.Error("Failed to pick random sticker",
			zap.Error(err),
			zap.Int64("user_id", userID))
		b.sendMessage(chatID, "Failed to send sticker.")
		return
	}

	if choice.Record == nil {
		b.sendStickerFile(chatID, choice.FilePath)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("Sending a random sticker from set: %s", choice.Record.SetName))
	err = b.messenger.SendSticker(chatID, choice.Record.FileID)
	if err == nil {
		return
	}

	b.logger.Error("Failed to send sticker by file id",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("path", choice.RecordPath))

	path, err := b.picker.Fallback(choice.RecordPath)
	if err != nil {
		b.sendMessage(chatID, "Could not find the sticker file.")
		return
	}
	b.sendStickerFile(chatID, path)
}

func (b *Bot) sendStickerFile(chatID int64, path string) {
	b.sendMessage(chatID, "Sending sticker file directly instead...")
	if err := b.messenger.SendDocument(chatID, path); err != nil {
		b.logger.Error("Failed to send sticker file",
			zap.Error(err),
			zap.String("path", path))
		b.sendMessage(chatID, "Failed to send sticker.")
	}
}

func (b *Bot) handleSets(ctx context.Context, message *tgbotapi.Message) {
	sets, err := b.listSets(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("Failed to list sticker sets",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "Sorry, failed to retrieve your sticker sets. Please try again later.")
		return
	}

	if len(sets) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any downloaded sticker sets yet.")
		return
	}

	var response strings.Builder
	response.WriteString("Your sticker sets:\n")
	for i, set := range sets {
		fmt.Fprintf(&response, "%d. %s (%d/%d stickers)\n", i+1, set.SetName, set.Saved, set.Enumerated)
	}
	b.sendMessage(message.Chat.ID, response.String())
}
