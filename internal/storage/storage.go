package storage

import (
	"context"

	"github.com/xaenox/sticker-bot/internal/models"
)

// Catalog keeps track of which sticker sets were downloaded for each user.
type Catalog interface {
	SaveSet(ctx context.Context, summary models.SetSummary) error
	ListSets(ctx context.Context, userID int64) ([]models.SetSummary, error)
	Close() error
}
