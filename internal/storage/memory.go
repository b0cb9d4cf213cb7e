package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xaenox/sticker-bot/internal/models"
)

type MemoryCatalog struct {
	mu   sync.RWMutex
	sets map[int64]map[string]models.SetSummary
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		sets: make(map[int64]map[string]models.SetSummary),
	}
}

func (s *MemoryCatalog) SaveSet(ctx context.Context, summary models.SetSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if summary.DownloadedAt.IsZero() {
		summary.DownloadedAt = time.Now()
	}

	userSets, exists := s.sets[summary.UserID]
	if !exists {
		userSets = make(map[string]models.SetSummary)
		s.sets[summary.UserID] = userSets
	}
	userSets[summary.SetName] = summary
	return nil
}

func (s *MemoryCatalog) ListSets(ctx context.Context, userID int64) ([]models.SetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.SetSummary, 0, len(s.sets[userID]))
	for _, summary := range s.sets[userID] {
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SetName < result[j].SetName
	})
	return result, nil
}

func (s *MemoryCatalog) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
