package bot

import (
	"context"
	"path/filepath"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/sticker-bot/internal/downloader"
	"github.com/xaenox/sticker-bot/internal/models"
	"github.com/xaenox/sticker-bot/internal/picker"
	"github.com/xaenox/sticker-bot/internal/session"
	"github.com/xaenox/sticker-bot/internal/storage"
	"go.uber.org/zap"
)

// Updater is the part of *tgbotapi.BotAPI used to receive updates.
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Downloader stores the stickers of one set on disk.
type Downloader interface {
	DownloadCollection(ctx context.Context, userID int64, setName, userRoot string) downloader.Result
}

// Picker chooses a random stored sticker.
type Picker interface {
	Pick(root string) (picker.Choice, error)
	Fallback(recordPath string) (string, error)
}

type Config struct {
	// RootDir holds one directory per user.
	RootDir string
	// DirPrefix is prepended to the user id to name the user's directory.
	DirPrefix   string
	PollTimeout int
}

type Bot struct {
	updater    Updater
	messenger  Messenger
	sessions   *session.Manager
	downloader Downloader
	picker     Picker
	catalog    storage.Catalog
	config     Config
	logger     *zap.Logger
}

func New(
	updater Updater,
	messenger Messenger,
	sessions *session.Manager,
	downloader Downloader,
	picker Picker,
	catalog storage.Catalog,
	config Config,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		updater:    updater,
		messenger:  messenger,
		sessions:   sessions,
		downloader: downloader,
		picker:     picker,
		catalog:    catalog,
		config:     config,
		logger:     logger,
	}
}

// Start polls for updates until ctx is done, then waits for in-flight
// handlers to finish.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.PollTimeout

	updates := b.updater.GetUpdatesChan(u)
	d := newDispatcher(b.handleMessage, b.logger)

	b.logger.Info("Bot started", zap.String("root_dir", b.config.RootDir))

	for {
		select {
		case <-ctx.Done():
			b.updater.StopReceivingUpdates()
			d.wait()
			b.logger.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				d.wait()
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			d.dispatch(update.Message.From.ID, update.Message)
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Sticker != nil {
		b.handleSticker(message)
	}
	// Anything else is not bot input.
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "index":
		b.handleIndex(message)
	case "stop_index":
		b.handleStopIndex(ctx, message)
	case "random_sticker":
		b.handleRandomSticker(message)
	case "sets":
		b.handleSets(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

// userDir is the name of the user's storage directory.
func (b *Bot) userDir(userID int64) string {
	return b.config.DirPrefix + strconv.FormatInt(userID, 10)
}

func (b *Bot) userRoot(userID int64) string {
	return filepath.Join(b.config.RootDir, b.userDir(userID))
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.messenger.SendText(chatID, text); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) listSets(ctx context.Context, userID int64) ([]models.SetSummary, error) {
	if b.catalog == nil {
		return nil, nil
	}
	return b.catalog.ListSets(ctx, userID)
}
