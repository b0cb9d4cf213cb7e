package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xaenox/sticker-bot/internal/metadata"
	"github.com/xaenox/sticker-bot/internal/models"
	"github.com/xaenox/sticker-bot/internal/storage"
	"go.uber.org/zap"
)

// CollectionResolver lists the stickers of a named set.
type CollectionResolver interface {
	ResolveCollection(ctx context.Context, name string) ([]models.ItemDescriptor, error)
}

// PayloadFetcher writes the payload of a file reference to dst.
type PayloadFetcher interface {
	Download(ctx context.Context, fileID, dst string) error
}

// RecordWriter persists a metadata record.
type RecordWriter interface {
	Write(path string, record models.StoredItem) error
}

// Result describes one download pass over a set.
type Result struct {
	// Enumerated is the number of stickers the provider listed for the set.
	Enumerated int
	// Saved is the number of stickers whose payload was written.
	Saved int
}

type Downloader struct {
	resolver CollectionResolver
	fetcher  PayloadFetcher
	records  RecordWriter
	catalog  storage.Catalog
	logger   *zap.Logger
}

func New(resolver CollectionResolver, fetcher PayloadFetcher, records RecordWriter, catalog storage.Catalog, logger *zap.Logger) *Downloader {
	return &Downloader{
		resolver: resolver,
		fetcher:  fetcher,
		records:  records,
		catalog:  catalog,
		logger:   logger,
	}
}

// DownloadCollection stores every sticker of setName under userRoot/setName.
// Failures never escape: an unresolvable set yields a zero Result and a
// failing item is skipped.
func (d *Downloader) DownloadCollection(ctx context.Context, userID int64, setName, userRoot string) Result {
	logger := d.logger.With(
		zap.Int64("user_id", userID),
		zap.String("set_name", setName))

	items, err := d.resolver.ResolveCollection(ctx, setName)
	if err != nil {
		logger.Error("Failed to resolve sticker set", zap.Error(err))
		return Result{}
	}

	setDir := filepath.Join(userRoot, setName)
	if err := os.MkdirAll(setDir, 0o755); err != nil {
		logger.Error("Failed to create set directory",
			zap.Error(err),
			zap.String("path", setDir))
		return Result{}
	}

	result := Result{Enumerated: len(items)}
	for i, item := range items {
		n := i + 1
		if err := d.downloadItem(ctx, setDir, n, item); err != nil {
			logger.Warn("Failed to download sticker",
				zap.Error(err),
				zap.Int("index", n),
				zap.String("file_id", item.FileID))
			continue
		}
		result.Saved++
	}

	logger.Info("Downloaded sticker set",
		zap.Int("enumerated", result.Enumerated),
		zap.Int("saved", result.Saved))

	d.recordSet(ctx, logger, userID, setName, result)
	return result
}

// downloadItem writes the record before the payload. A payload without its
// record can never be picked, so it is not fetched when the record write fails.
func (d *Downloader) downloadItem(ctx context.Context, setDir string, n int, item models.ItemDescriptor) error {
	record := item.Record()
	if err := d.records.Write(metadata.RecordPath(setDir, n), record); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := d.fetcher.Download(ctx, item.FileID, metadata.PayloadPath(setDir, n, item.IsAnimated)); err != nil {
		return fmt.Errorf("download payload: %w", err)
	}
	return nil
}

func (d *Downloader) recordSet(ctx context.Context, logger *zap.Logger, userID int64, setName string, result Result) {
	if d.catalog == nil {
		return
	}
	err := d.catalog.SaveSet(ctx, models.SetSummary{
		UserID:       userID,
		SetName:      setName,
		Enumerated:   result.Enumerated,
		Saved:        result.Saved,
		DownloadedAt: time.Now(),
	})
	if err != nil {
		logger.Error("Failed to save set to catalog", zap.Error(err))
	}
}
